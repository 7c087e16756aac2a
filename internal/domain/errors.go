// Package domain holds the error taxonomy shared by the domain packages.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrAccessDenied marks a requester that is neither project owner nor member.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound marks a missing object, edge or project.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate number or a stale version.
	ErrConflict = errors.New("conflict")
	// ErrStorage marks an underlying persistence failure.
	ErrStorage = errors.New("storage error")
)

// ValidationError carries a field-level message and unwraps to ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Storage wraps err so that it matches ErrStorage while keeping its cause.
func Storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// Kind returns the taxonomy sentinel err belongs to, or nil.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return ErrValidation
	case errors.Is(err, ErrAccessDenied):
		return ErrAccessDenied
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict):
		return ErrConflict
	case errors.Is(err, ErrStorage):
		return ErrStorage
	default:
		return nil
	}
}
