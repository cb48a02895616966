package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad input. Callers should not retry.
	ErrValidation = errors.New("validation error")

	// ErrStoreUnavailable marks a failure of the underlying database.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is never returned by lookups, which signal absence with a
	// nil record; front ends use it to report a missing id.
	ErrNotFound = errors.New("record not found")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// unavailable wraps a driver error so that it matches ErrStoreUnavailable
// while keeping the original error in the chain.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
