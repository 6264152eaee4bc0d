// Package errors provides domain-specific error types and sentinel errors
// shared by the dataset loaders, storage and HTTP layers.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource (file, object, region) was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates malformed input data or parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a dataset encoding the loader does not understand.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNoSnapshot indicates no dataset has been loaded yet.
	ErrNoSnapshot = errors.New("no dataset loaded")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsUnsupportedFormat reports whether err wraps ErrUnsupportedFormat.
func IsUnsupportedFormat(err error) bool { return errors.Is(err, ErrUnsupportedFormat) }

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// DecodeError reports a dataset that could not be parsed.
type DecodeError struct {
	Source string
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (%s): %v", e.Source, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new decode error.
func NewDecodeError(source, format string, err error) *DecodeError {
	return &DecodeError{
		Source: source,
		Format: format,
		Err:    err,
	}
}
