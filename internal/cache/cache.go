// Package cache defines the volatile status and result caches the worker
// writes and the reconciliation service reads. Entries are TTL-bound and may
// vanish at any time; the job store stays the source of truth.
package cache

import (
	"context"
	"errors"

	"github.com/phrazzld/deckgen-api/internal/domain"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Key prefixes shared with external workers.
const (
	StatusKeyPrefix = "job_status:"
	ResultKeyPrefix = "presentation:"
)

// StatusKey returns the status cache key for a job.
func StatusKey(jobID string) string {
	return StatusKeyPrefix + jobID
}

// ResultKey returns the result cache key for a job.
func ResultKey(jobID string) string {
	return ResultKeyPrefix + jobID
}

// StatusCache holds the worker's view of a job's status.
type StatusCache interface {
	// GetStatus returns the raw cached value exactly as the worker wrote it,
	// or ErrMiss. Callers normalise it with domain.ParseJobStatus.
	GetStatus(ctx context.Context, jobID string) (string, error)

	// SetStatus records a status. Only the worker calls this.
	SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error
}

// ResultCache holds generated presentation payloads until they are promoted.
type ResultCache interface {
	// GetResult returns the raw payload or ErrMiss.
	GetResult(ctx context.Context, jobID string) ([]byte, error)

	// SetResult stores a payload. Only the worker calls this.
	SetResult(ctx context.Context, jobID string, payload []byte) error
}
