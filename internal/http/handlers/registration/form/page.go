package form

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-portal/internal/http/response"
	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
)

// PageState — данные для отрисовки страницы регистрации.
type PageState struct {
	RegistrationEnabled bool                 `json:"registration_enabled"`
	CaptchaSiteKey      string               `json:"captcha_site_key,omitempty"`
	Success             string               `json:"success,omitempty"`
	Errors              []response.ErrorItem `json:"errors,omitempty"`
}

// PageHandler отдаёт состояние страницы регистрации: включена ли регистрация,
// ключ reCAPTCHA и сообщения для кодов из параметров редиректа.
type PageHandler struct {
	enabled bool
	siteKey string
}

// NewPage создает PageHandler. siteKey пуст, если CAPTCHA выключена.
func NewPage(enabled bool, siteKey string) *PageHandler {
	return &PageHandler{enabled: enabled, siteKey: siteKey}
}

// ServeHTTP godoc
// @Summary Состояние страницы регистрации
// @Tags Registration
// @Produce  json
// @Param registration-err query string false "Коды ошибок через запятую"
// @Param success query string false "Имя зарегистрированного участника"
// @Success 200 {object} response.Response
// @Router /registration [get]
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := PageState{
		RegistrationEnabled: h.enabled,
		CaptchaSiteKey:      h.siteKey,
		Success:             q.Get(ParamSuccess),
	}
	if codes := errcode.Parse(q.Get(ParamErrors)); len(codes) > 0 {
		state.Errors = response.Codes(codes).Errors
	}
	render.JSON(w, r, response.StatusOKWithData(state))
}
