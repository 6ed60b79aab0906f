// Package response содержит типы и функции для формирования единых JSON-ответов
// HTTP-обработчиков: успешных ответов, ошибок и сообщений валидации.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/natalia-epifanova/course-marketplace/internal/lib/validate"
	"github.com/natalia-epifanova/course-marketplace/internal/models"
	"github.com/natalia-epifanova/course-marketplace/internal/policy"
	"github.com/natalia-epifanova/course-marketplace/internal/storage"
)

// Response стандартная структура JSON-ответа сервера.
// Status "OK" или "Error", Error заполняется при неуспехе, Data и Message при успехе.
type Response struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// StatusOKWithMessage возвращает успешный Response с коротким сообщением.
func StatusOKWithMessage(msg string) Response {
	return Response{
		Status:  StatusOK,
		Message: msg,
	}
}

// Error возвращает ответ с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// FromError переводит ошибку сервиса в HTTP-статус и тело ответа.
// Ошибка валидации проверяется первой: она может оборачивать ErrNotFound
// ссылки на несуществующий объект, и клиенту нужен 400, а не 404.
func FromError(err error) (int, ErrorResponse) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, Error(verr.Msg)
	case errors.Is(err, policy.ErrForbidden):
		return http.StatusForbidden, Error("permission denied")
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, Error("not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict, Error("already exists")
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, Error("operation conflicts with current state")
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// RenderError пишет ответ по ошибке сервиса и возвращает выбранный статус.
func RenderError(w http.ResponseWriter, r *http.Request, err error) int {
	status, body := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, body)
	return status
}

// ValidationError формирует ответ с ошибкой на основе нарушений валидации.
// Каждое нарушение превращается в читаемый текст, тексты объединяются через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case validate.VideoHostTag:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must link to an approved video host", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
