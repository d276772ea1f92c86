package store

import (
	"context"
	"time"

	"github.com/phrazzld/deckgen-api/internal/domain"
)

// JobStore defines the interface for durable job persistence.
//
// Only the submission and reconciliation services write through this
// interface. Status and result writes are conditional so that concurrent
// polls for the same job cannot regress it.
type JobStore interface {
	// Create saves a new job. Returns ErrJobExists if the id is taken and
	// ErrInvalidEntity wrapping the domain error if the job is invalid.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a job by its id.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id string) (*domain.Job, error)

	// UpdateStatus moves a job from status `from` to status `to` and bumps
	// its updated timestamp. Returns ErrStatusConflict if the stored status is
	// no longer `from` and ErrJobNotFound if the job does not exist.
	UpdateStatus(ctx context.Context, id string, from, to domain.JobStatus) error

	// PromoteResult stores the presentation and status on a job that has no
	// result yet and has not failed. Returns ErrResultConflict when another
	// writer got there first and ErrJobNotFound if the job does not exist.
	PromoteResult(ctx context.Context, id string, status domain.JobStatus, p *domain.Presentation) error

	// ListByPrincipal returns the principal's jobs, newest first.
	ListByPrincipal(ctx context.Context, principalID string, limit, offset int) ([]*domain.Job, error)

	// FindStale returns jobs in one of the given statuses whose updated
	// timestamp is before olderThan, oldest first.
	FindStale(
		ctx context.Context,
		statuses []domain.JobStatus,
		olderThan time.Time,
		limit int,
	) ([]*domain.Job, error)
}

// QuotaStore persists the append-only generation records the rate limiter
// counts against.
type QuotaStore interface {
	// CountInWindow returns the number of records for the principal created
	// in [from, to).
	CountInWindow(ctx context.Context, principalID string, from, to time.Time) (int, error)

	// Record appends one generation record for the principal.
	Record(ctx context.Context, principalID string, at time.Time) error
}
