package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no transaction exists for the given id.
	ErrNotFound = errors.New("transaction not found")
	// ErrUnauthorized reports that the caller does not own the transaction.
	ErrUnauthorized = errors.New("not authorized")
	// ErrConflict reports a raced idempotency-key uniqueness violation.
	// The repository recovers it internally; callers should never see it.
	ErrConflict = errors.New("idempotency key already used")
)

// ValidationError rejects a create or update request, naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
