package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

// CustomError carries a caller-facing message on top of one of the sentinel kinds.
type CustomError struct {
	Err     error
	Message string
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewUnauthorized(message string) error {
	return &CustomError{Err: ErrUnauthorized, Message: message}
}

func NewForbidden(message string) error {
	return &CustomError{Err: ErrForbidden, Message: message}
}

func NewNotFound(message string) error {
	return &CustomError{Err: ErrNotFound, Message: message}
}

func NewValidation(message string) error {
	return &CustomError{Err: ErrValidation, Message: message}
}

func NewConflict(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// StatusCode maps an error to the HTTP status it should surface as.
// Anything outside the taxonomy is an internal error.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
