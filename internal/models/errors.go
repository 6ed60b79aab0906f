package models

import "errors"

// ErrConflict операция противоречит текущему состоянию ресурса.
var ErrConflict = errors.New("conflict")

// ValidationError ошибка входных данных, сообщение отдается клиенту как есть.
type ValidationError struct {
	Msg string
	Err error
}

// NewValidationError создает ValidationError с сообщением.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
