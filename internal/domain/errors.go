// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidJobStatus is returned when a status string names none of the job states.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrInvalidStyle is returned when a presentation style tag is not recognised.
	ErrInvalidStyle = errors.New("invalid presentation style")

	// ErrInvalidPresentation is returned when a result payload cannot be parsed
	// into a usable presentation.
	ErrInvalidPresentation = errors.New("invalid presentation")

	// ErrEmptyJobID is returned when a job is missing its identifier.
	ErrEmptyJobID = errors.New("job ID cannot be empty")

	// ErrEmptyPrincipalID is returned when a job or request has no owner.
	ErrEmptyPrincipalID = errors.New("principal ID cannot be empty")
)

// ValidationError describes a single invalid field. It always matches
// ErrValidation under errors.Is, and unwraps to Err when a cause is set.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation as a match regardless of the wrapped cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
