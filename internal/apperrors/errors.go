// Package apperrors holds the error values shared by the stores, the form
// workflow and the HTTP layer.
package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("conflict")
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// CustomError carries a message meant for the person at the keyboard, next to
// the underlying error used for classification.
type CustomError struct {
	Err     error
	Message string
}

// New wraps err with a user-visible message.
func New(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
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

// NotFound returns a not-found error with a message.
func NotFound(message string) error {
	return New(ErrNotFound, message)
}

// Conflict returns a conflict error with a message.
func Conflict(message string) error {
	return New(ErrConflict, message)
}

// Invalid returns a validation error with a message.
func Invalid(message string) error {
	return New(ErrValidationFailed, message)
}

// Message returns the user-visible message carried by err, or fallback when
// err has none.
func Message(err error, fallback string) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}
