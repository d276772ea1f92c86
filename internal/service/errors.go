package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/deckgen-api/internal/store"
)

// Common service errors - sentinel errors used across the job service.
// Callers check them with errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrQuotaExceeded indicates the principal already used today's generations.
	// API layer should map this to HTTP 429 Too Many Requests.
	ErrQuotaExceeded = errors.New("daily generation quota exceeded")

	// ErrJobNotFound indicates no job exists with the requested id.
	// API layer should map this to HTTP 404 Not Found.
	ErrJobNotFound = errors.New("job not found")

	// ErrInternal marks failures the caller cannot fix.
	ErrInternal = errors.New("internal error")

	// ErrEnqueueFailed indicates the job was created but could not be handed
	// to the worker. It is an internal error.
	ErrEnqueueFailed = fmt.Errorf("%w: failed to enqueue job", ErrInternal)

	// ErrInvalidResult indicates the cached result payload could not be parsed.
	ErrInvalidResult = fmt.Errorf("%w: invalid result payload", ErrInternal)

	// ErrNotOwned indicates a resource belongs to a different principal.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another principal")
)

// JobServiceError wraps unexpected failures from the job service with context.
type JobServiceError struct {
	// Operation is the operation that failed (e.g. "submit", "get_status")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for JobServiceError.
func (e *JobServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("job service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("job service %s failed: %s", e.Operation, e.Message)
}

// Unwrap exposes both the underlying error and ErrInternal to errors.Is/errors.As.
func (e *JobServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInternal}
	}
	return []error{ErrInternal, e.Err}
}

// NewJobServiceError creates a JobServiceError. Known sentinel errors are
// returned directly, and store-level not-found is mapped to ErrJobNotFound.
func NewJobServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrJobNotFound), errors.Is(err, store.ErrJobNotFound):
		return ErrJobNotFound
	case errors.Is(err, ErrQuotaExceeded):
		return ErrQuotaExceeded
	case errors.Is(err, ErrInvalidResult), errors.Is(err, ErrEnqueueFailed):
		return err
	}

	return &JobServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
