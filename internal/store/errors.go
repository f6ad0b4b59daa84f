package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrBookNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "book not found",
	}

	ErrUserNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "user not found",
	}

	ErrRelationshipNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "relationship not found",
	}

	ErrSessionNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "session not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	ErrEmailExists = &Error{
		Code:    http.StatusConflict,
		Message: "email already registered",
	}
)
