package store

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that an operation referenced an event id that does not
// exist in the session's namespace. It is terminal and surfaced as-is.
var ErrNotFound = errors.New("event not found")

// StorageError wraps a failed persistence call.
//
// The underlying error is propagated verbatim so callers can log enough
// detail. The store performs no silent retries - retry policy, if any,
// belongs to the caller, which avoids double-writes against a database that
// might have partially succeeded.
type StorageError struct {
	// Op names the failed operation ("create event", "list events", ...).
	Op string

	// Err is the underlying driver or serialization error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorage returns true if the error is a storage error.
// Uses errors.As to handle wrapped errors.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
