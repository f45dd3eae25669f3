// Package registration содержит разбор полей формы регистрации участника,
// общий для обработчика формы и AJAX.
package registration

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/gym-portal/internal/lib/membership"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sanitize"
	"github.com/magabrotheeeer/gym-portal/internal/models"
)

// CaptchaField — поле формы с ответом reCAPTCHA.
const CaptchaField = "g-recaptcha-response"

// Form — разобранные поля формы.
type Form struct {
	Candidate    models.Candidate
	CaptchaToken string
}

// ParseForm разбирает urlencoded или multipart форму.
// Логин участника берётся из полного имени.
func ParseForm(r *http.Request) (*Form, error) {
	const op = "registration.ParseForm"
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var c models.Candidate
	if r.Form.Has(models.MetaFullName) {
		fullName := r.FormValue(models.MetaFullName)
		c.Username = fullName
		c.FullName = &fullName
	}
	if r.Form.Has(models.MetaIsStudent) {
		student := sanitize.Flag(r.FormValue(models.MetaIsStudent)) == "1"
		c.IsStudent = &student
	}
	if r.Form.Has(models.MetaBranch) {
		branch := r.FormValue(models.MetaBranch)
		c.Branch = &branch
	}
	if v := strings.TrimSpace(r.FormValue(models.MetaMembershipDuration)); v != "" {
		if p, ok := membership.ParsePreset(v); ok {
			c.MembershipDurationPreset = &p
		} else {
			c.MembershipDurationSpecific = &v
		}
	}

	return &Form{Candidate: c, CaptchaToken: r.FormValue(CaptchaField)}, nil
}

// RemoteIP возвращает адрес клиента без порта.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
