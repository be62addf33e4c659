package event

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed draft or patch field.
//
// Validation errors are always detected before any mutation and are
// recoverable: the caller fixes the input and retries. They are never
// retried automatically.
type ValidationError struct {
	// Field names the offending input field ("title", "datetime", ...).
	Field string

	// Message is a human-readable description suitable for direct display.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation returns true if the error is a validation error.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
