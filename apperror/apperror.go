package apperror

import (
	"errors"
	"net/http"
)

// AppError is an error that already knows which HTTP status it maps to.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// Wrap attaches a cause that is logged but not shown to clients.
func Wrap(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *AppError   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *AppError { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *AppError    { return New(http.StatusForbidden, message) }
func NotFound(message string) *AppError     { return New(http.StatusNotFound, message) }
func Conflict(message string) *AppError     { return New(http.StatusConflict, message) }

func Internal(message string, err error) *AppError {
	return Wrap(http.StatusInternalServerError, message, err)
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 for anything untyped.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
