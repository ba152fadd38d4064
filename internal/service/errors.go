package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Every error returned by the services wraps exactly one of
// these so handlers can map it with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrInvalidState   = errors.New("invalid state")
	ErrAuthentication = errors.New("authentication error")
)

// Error carries a client-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func invalidState(msg string) error { return &Error{Kind: ErrInvalidState, Message: msg} }

func unauthenticated(msg string) error { return &Error{Kind: ErrAuthentication, Message: msg} }
