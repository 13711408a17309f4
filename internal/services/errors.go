package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream service failed")
)

var (
	ErrInvalidCredentials = &Error{Kind: ErrUnauthorized, Message: "Invalid email or password"}
	ErrInvalidToken       = &Error{Kind: ErrUnauthorized, Message: "Invalid or expired token"}
	ErrEmailExists        = &Error{Kind: ErrConflict, Message: "Email already registered"}
)

// Error pairs an error kind with a message that is safe to show clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
