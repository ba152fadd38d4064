// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without depending on gorm.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation the
// resource's state does not allow, such as reviewing an unpaid booking.
// Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update violates a uniqueness
// constraint, e.g. two users claiming the same auth id.  Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// translate maps gorm errors onto the sentinels above.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}
