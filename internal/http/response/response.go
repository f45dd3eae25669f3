// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Errors — коды ошибок каталога с сообщениями (опционально).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Errors []ErrorItem `json:"errors,omitempty"`
	Data   any         `json:"data,omitempty"`
}

// ErrorItem — одна ошибка каталога в ответе.
type ErrorItem struct {
	Code    string `json:"code" example:"username_length"`
	Message string `json:"message" example:"Full name is \"too short\"- that's what she said"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string      `json:"status" example:"Error"`
	Error  string      `json:"error" example:"invalid request body"`
	Errors []ErrorItem `json:"errors,omitempty"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// Codes формирует ответ с ошибками каталога. Сообщения берутся из errcode.
func Codes(codes errcode.List) ErrorResponse {
	items := make([]ErrorItem, 0, len(codes))
	for _, c := range codes {
		items = append(items, ErrorItem{Code: string(c), Message: errcode.Message(c)})
	}
	return ErrorResponse{
		Status: StatusError,
		Error:  codes.Error(),
		Errors: items,
	}
}

// HTTPStatus подбирает HTTP статус для списка кодов.
func HTTPStatus(codes errcode.List) int {
	switch {
	case codes.Has(errcode.Unauthenticated):
		return http.StatusUnauthorized
	case codes.Has(errcode.ForbiddenCapability):
		return http.StatusForbidden
	case codes.Has(errcode.Unknown):
		return http.StatusInternalServerError
	case codes.Has(errcode.RegistrationDisabled), codes.Has(errcode.RegistrationClosed):
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
