// Package apperr defines the error kinds shared by the pipeline packages.
//
// Callers distinguish kinds with errors.Is and errors.As; the CLI maps each
// kind to a stable error code.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult means an operation needed rows and got none.
	ErrEmptyResult = errors.New("empty result")

	// ErrSourceUnavailable means a data source call failed.
	ErrSourceUnavailable = errors.New("data source unavailable")

	// ErrNotFound means a referenced item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt means persisted data could not be decoded.
	ErrCorrupt = errors.New("persisted data is corrupt")
)

// ValidationError reports user input that is missing or malformed.
// The operation that returned it made no state change.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid returns a *ValidationError. Format accepts %w; the wrapped error
// stays reachable through errors.Is.
func Invalid(field, format string, args ...any) error {
	cause := fmt.Errorf(format, args...)
	return &ValidationError{Field: field, Message: cause.Error(), Err: errors.Unwrap(cause)}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
