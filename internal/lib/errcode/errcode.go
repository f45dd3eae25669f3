// Package errcode содержит закрытый каталог кодов ошибок портала и сообщения для них.
//
// Код — это строка, которая уходит клиенту (в query‑параметре редиректа, в JSON или в GraphQL),
// поэтому значения констант менять нельзя.
package errcode

import (
	"errors"
	"strings"
)

// Code — символьный код ошибки.
type Code string

const (
	EmptyField           Code = "empty_field"
	UsernameTooShort     Code = "username_length"
	UsernameExists       Code = "username_exists"
	InvalidUsername      Code = "invalid_username_register"
	EmailInvalid         Code = "email"
	EmailExists          Code = "email_exists"
	DateFormatInvalid    Code = "date_format"
	DateExceedsBase      Code = "date_exceed"
	DateBeforeNow        Code = "date_before"
	RegistrationClosed   Code = "closed"
	RegistrationDisabled Code = "disabled"
	CaptchaFailed        Code = "captcha"
	InvalidCredentials   Code = "invalid_username"
	IncorrectPassword    Code = "incorrect_password"
	UpdateFailed         Code = "update_failed"
	Unauthenticated      Code = "unauthenticated"
	ForbiddenCapability  Code = "forbidden_capability"
	Unknown              Code = "unknown"
)

const fallbackMessage = "An unknown error occurred. Please try again later."

var messages = map[Code]string{
	EmptyField:           "You forgot some fields though. Also, username must be always defined",
	UsernameTooShort:     `Full name is "too short"- that's what she said`,
	UsernameExists:       "Username already exists",
	InvalidUsername:      "Somehow that username is invalid. Maybe use a different one?",
	EmailInvalid:         "The email address you entered is not valid.",
	EmailExists:          "An account exists with this email address.",
	DateFormatInvalid:    "Date format invalid",
	DateExceedsBase:      "Date input exceeded the expected date",
	DateBeforeNow:        "Date input must not be before the current date",
	RegistrationClosed:   "Registering new users is currently not allowed.",
	RegistrationDisabled: "Registration is currently not allowed.",
	CaptchaFailed:        "The Google reCAPTCHA check failed. Are you a robot?",
	InvalidCredentials:   "Invalid username/email",
	IncorrectPassword:    "The password you entered wasn't quite right. Did you forget your password?",
	UpdateFailed:         "Failed to update data. Something went wrong with our servers",
	Unauthenticated:      "Unauthenticated",
	ForbiddenCapability:  "Forbidden capabilities",
}

// Message возвращает текст ошибки для кода. Для неизвестного кода — общее сообщение.
func Message(code Code) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fallbackMessage
}

// List — упорядоченный список кодов без повторов. Реализует error,
// чтобы ошибки валидации можно было возвращать обычным способом.
type List []Code

// Of собирает список из переданных кодов.
func Of(codes ...Code) List {
	var l List
	return l.Add(codes...)
}

// Add добавляет коды в конец списка, пропуская уже присутствующие.
func (l List) Add(codes ...Code) List {
	for _, c := range codes {
		if !l.Has(c) {
			l = append(l, c)
		}
	}
	return l
}

// Has сообщает, содержит ли список код.
func (l List) Has(code Code) bool {
	for _, c := range l {
		if c == code {
			return true
		}
	}
	return false
}

// Strings возвращает коды в виде строк.
func (l List) Strings() []string {
	out := make([]string, 0, len(l))
	for _, c := range l {
		out = append(out, string(c))
	}
	return out
}

// Messages возвращает сообщения для всех кодов в том же порядке.
func (l List) Messages() []string {
	out := make([]string, 0, len(l))
	for _, c := range l {
		out = append(out, Message(c))
	}
	return out
}

// Join склеивает коды через запятую, как они передаются в query‑параметре.
func (l List) Join() string {
	return strings.Join(l.Strings(), ",")
}

func (l List) Error() string {
	return strings.Join(l.Messages(), "; ")
}

// Parse разбирает строку вида "code1,code2" из query‑параметра.
func Parse(s string) List {
	var l List
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			l = l.Add(Code(part))
		}
	}
	return l
}

// FromError извлекает список кодов из ошибки. Ошибки, не содержащие List, дают Unknown.
func FromError(err error) List {
	if err == nil {
		return nil
	}
	var l List
	if errors.As(err, &l) && len(l) > 0 {
		return l
	}
	return Of(Unknown)
}

// IsAuthorization сообщает, что список описывает отказ в доступе, а не ошибку валидации.
func (l List) IsAuthorization() bool {
	return l.Has(Unauthenticated) || l.Has(ForbiddenCapability)
}
