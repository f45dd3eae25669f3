// Package ajax реализует регистрацию участника из внешнего приложения.
// Ответ всегда JSON: данные участника или список кодов ошибок с сообщениями.
package ajax

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-portal/internal/http/handlers/registration"
	"github.com/magabrotheeeer/gym-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-portal/internal/http/response"
	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
	"github.com/magabrotheeeer/gym-portal/internal/models"
	"github.com/magabrotheeeer/gym-portal/internal/services/account"
)

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, req account.RegisterRequest) (*models.GymUser, error)
}

// Handler обрабатывает AJAX запрос на регистрацию участника.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Регистрация участника из приложения
// @Description Требует входа и права create_gym_member. Возвращает данные нового участника.
// @Tags Registration
// @Accept  x-www-form-urlencoded
// @Produce  json
// @Security BearerAuth
// @Param full_name formData string true "Полное имя, из него строится логин"
// @Param is_student formData string false "Студент (on/1)"
// @Param branch formData string false "Филиал"
// @Param membership_duration formData string false "Пресет или дата окончания абонемента"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибки валидации"
// @Failure 401 {object} response.ErrorResponse "Нет входа"
// @Failure 403 {object} response.ErrorResponse "Нет прав или регистрация выключена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/ajax/register-gym-member [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.registration.ajax"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	form, err := registration.ParseForm(r)
	if err != nil {
		log.Info("failed to parse form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	user, err := h.service.Register(r.Context(), account.RegisterRequest{
		Actor:        middlewarectx.ActorFrom(r.Context()),
		Candidate:    form.Candidate,
		Role:         models.RoleGymMember,
		Channel:      account.ChannelAJAX,
		CaptchaToken: form.CaptchaToken,
		RemoteIP:     registration.RemoteIP(r),
	})
	if err != nil {
		codes := errcode.FromError(err)
		log.Info("registration failed", sl.Codes(codes.Strings()))
		render.Status(r, response.HTTPStatus(codes))
		render.JSON(w, r, response.Codes(codes))
		return
	}

	log.Info("member registered", slog.Int64("user_id", user.UserID))
	render.JSON(w, r, response.StatusOKWithData(user))
}
