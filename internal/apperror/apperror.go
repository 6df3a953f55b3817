// Package apperror defines the domain errors shared by every layer.
//
// Services return these; the HTTP layer maps them to status codes with
// errors.Is, so a service never has to know about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel, one of the Err* values above
	Message string // human-readable message, safe to show to the user
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound names the missing resource. Singletons such as the profile
// have no id and pass "".
func NotFound(resource, id string) *AppError {
	msg := resource + " not found"
	if id != "" {
		msg = fmt.Sprintf("%s not found with id %s", resource, id)
	}
	return &AppError{
		Err:     ErrNotFound,
		Message: msg,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized means no usable session was presented. Maps to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// LoggedOut is the Unauthorized error for a request made with no profile
// to act on.
func LoggedOut() *AppError {
	return Unauthorized("log in first")
}

// StalePersona is the Forbidden error for a session cookie naming a
// profile that has since been replaced by another login.
func StalePersona() *AppError {
	return Forbidden("session does not match the current profile")
}

// As returns the *AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
