// Package form реализует обработку формы самостоятельной регистрации участника.
//
// Результат всегда отдаётся редиректом на страницу регистрации: с параметром
// registration-err (коды ошибок через запятую) или success (имя участника).
// Форма только для гостей: отправка от вошедшего пользователя игнорируется.
package form

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/gym-portal/internal/http/handlers/registration"
	"github.com/magabrotheeeer/gym-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
	"github.com/magabrotheeeer/gym-portal/internal/models"
	"github.com/magabrotheeeer/gym-portal/internal/services/account"
)

// Query‑параметры страницы регистрации.
const (
	ParamErrors  = "registration-err"
	ParamSuccess = "success"
)

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, req account.RegisterRequest) (*models.GymUser, error)
}

// Handler обрабатывает POST формы регистрации.
type Handler struct {
	log         *slog.Logger
	service     Service
	redirectURL string
}

// New создает Handler. redirectURL — адрес страницы регистрации.
func New(log *slog.Logger, service Service, redirectURL string) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		redirectURL: redirectURL,
	}
}

// ServeHTTP godoc
// @Summary Регистрация участника через форму
// @Description Регистрирует участника спортзала и перенаправляет на страницу регистрации с результатом.
// @Tags Registration
// @Accept  x-www-form-urlencoded
// @Param full_name formData string true "Полное имя, из него строится логин"
// @Param is_student formData string false "Студент (on/1)"
// @Param branch formData string false "Филиал"
// @Param membership_duration formData string false "Пресет или дата окончания абонемента"
// @Param g-recaptcha-response formData string false "Ответ reCAPTCHA"
// @Success 303 "Редирект с ?success=<имя> или ?registration-err=<коды>"
// @Router /registration [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.registration.form"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if actor := middlewarectx.ActorFrom(r.Context()); actor.Authenticated() {
		log.Info("form submitted by logged-in user, ignored", slog.Int64("user_id", actor.UserID))
		h.redirect(w, r, "", "")
		return
	}

	form, err := registration.ParseForm(r)
	if err != nil {
		log.Info("failed to parse form", sl.Err(err))
		h.redirect(w, r, ParamErrors, errcode.Of(errcode.EmptyField).Join())
		return
	}

	_, err = h.service.Register(r.Context(), account.RegisterRequest{
		Candidate:    form.Candidate,
		Role:         models.RoleGymMember,
		Channel:      account.ChannelForm,
		CaptchaToken: form.CaptchaToken,
		RemoteIP:     registration.RemoteIP(r),
	})
	if err != nil {
		codes := errcode.FromError(err)
		log.Info("registration failed", sl.Codes(codes.Strings()))
		h.redirect(w, r, ParamErrors, codes.Join())
		return
	}

	name := ""
	if form.Candidate.FullName != nil {
		name = *form.Candidate.FullName
	}
	log.Info("member registered")
	h.redirect(w, r, ParamSuccess, name)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, key, value string) {
	u, err := url.Parse(h.redirectURL)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	if key != "" {
		q := u.Query()
		q.Set(key, value)
		u.RawQuery = q.Encode()
	}
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}
