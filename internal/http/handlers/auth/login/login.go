// Package login реализует HTTP-обработчик для запросов аутентификации пользователей.
//
// В нём определяется структура Request для входных данных, выполняется декодирование JSON,
// проверка полей и делегирование входа сервису аутентификации.
// При успешном входе возвращается JWT, роль и адрес для перехода по роли,
// токен также кладётся в cookie для формы регистрации.
package login

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-portal/internal/http/response"
	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
)

// Request — структура входных данных для авторизации.
// Login — логин или email.
type Request struct {
	Login    string `json:"login" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log         *slog.Logger        // Логгер для записи операций и ошибок
	authService Service             // Сервис аутентификации
	validate    *validator.Validate // Валидатор для проверки входных данных
	tokenTTL    time.Duration       // Время жизни cookie с токеном
}

// New создает новый экземпляр Handler с указанными логгером и сервисом аутентификации.
func New(log *slog.Logger, authService Service, tokenTTL time.Duration) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
		tokenTTL:    tokenTTL,
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по логину или email и паролю. Возвращает JWT и адрес перехода.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.authService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		codes := errcode.FromError(err)
		status := http.StatusUnauthorized
		if codes.Has(errcode.Unknown) {
			log.Error("login failed", sl.Err(err))
			status = http.StatusInternalServerError
		} else {
			log.Info("login rejected", sl.Codes(codes.Strings()))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Codes(codes))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewarectx.TokenCookie,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("login success", slog.Int64("user_id", res.UserID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token":       res.Token,
		"role":        res.Role,
		"login":       res.Login,
		"redirect_to": res.RedirectTo,
	}))
}
