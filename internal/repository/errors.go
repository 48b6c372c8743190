// Package repository defines the typed collections stored in the key-value
// store and the error values shared by every layer above it.  Handlers
// translate these into HTTP status codes: ErrValidation into 400,
// ErrForbidden into 403, ErrNotFound into 404, ErrConflict into 409 and
// ErrStoreUnavailable into a generic 500.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an update or delete targets an id that is
// not in the collection.  Nothing is written.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller's identity does not allow the
// mutation.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a change would put two live lessons in the
// same teacher, date and time slot.
var ErrConflict = errors.New("conflict")

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrStoreUnavailable wraps failures of the key-value collaborator.
var ErrStoreUnavailable = errors.New("store unavailable")

// ValidationError lists the request fields that were missing or malformed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
