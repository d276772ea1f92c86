package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/deckgen-api/internal/cache"
	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/store"
)

// ResultView is what a client sees when asking for a job's presentation.
type ResultView struct {
	JobID  string
	Status domain.JobStatus
	// Ready is true when Presentation is set.
	Ready        bool
	Presentation *domain.Presentation
}

// GetStatus returns the current status of a job, reconciling the durable
// record with the worker's status cache.
//
// Once a job is terminal or carries a promoted result, the durable record
// is authoritative and the cache is not read. Otherwise a differing cache
// value is written back with a compare-and-set, so repeated polls with an
// unchanged cache perform no writes.
func (s *JobService) GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return "", NewJobServiceError("get_status", "failed to load job", err)
	}
	return s.reconcile(ctx, job), nil
}

// GetStoredStatus returns the durable status without consulting the cache.
func (s *JobService) GetStoredStatus(ctx context.Context, jobID string) (domain.JobStatus, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return "", NewJobServiceError("get_stored_status", "failed to load job", err)
	}
	return job.Status, nil
}

// GetJob returns the durable job record.
func (s *JobService) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, NewJobServiceError("get_job", "failed to load job", err)
	}
	return job, nil
}

// reconcile never fails: cache and write errors are logged and the last
// known durable status is returned.
func (s *JobService) reconcile(ctx context.Context, job *domain.Job) domain.JobStatus {
	log := s.log(ctx).With(slog.String("job_id", job.ID))

	if job.IsSettled() {
		return job.Status
	}

	raw, err := s.statuses.GetStatus(ctx, job.ID)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("status cache unavailable, serving stored status", slog.Any("error", err))
		}
		return job.Status
	}

	cached, err := domain.ParseJobStatus(raw)
	if err != nil {
		log.Warn("ignoring unrecognised cached status", slog.String("cached_status", raw))
		return job.Status
	}
	if cached == job.Status {
		return job.Status
	}

	if cached == domain.JobStatusCompleted {
		if p := s.cachedResult(ctx, job.ID); p != nil {
			if view, ok := s.promote(ctx, job, p); ok {
				return view.Status
			}
		}
	}

	err = s.jobs.UpdateStatus(ctx, job.ID, job.Status, cached)
	switch {
	case err == nil:
		log.Debug("status reconciled from cache",
			slog.String("from", job.Status.String()),
			slog.String("to", cached.String()))
		return cached
	case errors.Is(err, store.ErrStatusConflict):
		return s.reread(ctx, job).Status
	default:
		log.Error("failed to persist reconciled status",
			slog.String("to", cached.String()),
			slog.Any("error", err))
		return job.Status
	}
}

// cachedResult returns a parsed payload from the result cache, or nil when
// there is none or it is malformed.
func (s *JobService) cachedResult(ctx context.Context, jobID string) *domain.Presentation {
	blob, err := s.results.GetResult(ctx, jobID)
	if err != nil {
		return nil
	}
	p, err := domain.ParsePresentation(blob)
	if err != nil {
		return nil
	}
	return p
}

// reread reloads a job after losing a conditional write. On failure the
// stale copy is returned.
func (s *JobService) reread(ctx context.Context, job *domain.Job) *domain.Job {
	fresh, err := s.jobs.GetByID(ctx, job.ID)
	if err != nil {
		s.log(ctx).Error("failed to reload job after conflict",
			slog.String("job_id", job.ID),
			slog.Any("error", err))
		return job
	}
	return fresh
}

// promote attempts the first-write-wins promotion of p. The returned view
// reflects the durable record after the attempt; ok is false only when the
// write failed for a reason other than losing the race.
func (s *JobService) promote(ctx context.Context, job *domain.Job, p *domain.Presentation) (*ResultView, bool) {
	log := s.log(ctx).With(slog.String("job_id", job.ID))

	err := s.jobs.PromoteResult(ctx, job.ID, domain.JobStatusCompleted, p)
	switch {
	case err == nil:
		log.Info("result promoted", slog.Int("slides", len(p.Slides)))
		return &ResultView{JobID: job.ID, Status: domain.JobStatusCompleted, Ready: true, Presentation: p}, true
	case errors.Is(err, store.ErrResultConflict):
		fresh := s.reread(ctx, job)
		return viewOf(fresh), true
	default:
		log.Error("failed to promote result", slog.Any("error", err))
		return nil, false
	}
}

func viewOf(job *domain.Job) *ResultView {
	return &ResultView{
		JobID:        job.ID,
		Status:       job.Status,
		Ready:        job.HasResult(),
		Presentation: job.Presentation,
	}
}

// GetResult returns the job's presentation when one is available.
//
// A durable payload always wins. Otherwise a parseable payload in the result
// cache is promoted onto the job (first successful read wins) and served.
// A missing or unreachable result cache is not an error: the view is simply
// not ready.
func (s *JobService) GetResult(ctx context.Context, jobID string) (*ResultView, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, NewJobServiceError("get_result", "failed to load job", err)
	}
	log := s.log(ctx).With(slog.String("job_id", job.ID))

	if job.HasResult() || job.Status == domain.JobStatusFailed {
		return viewOf(job), nil
	}

	blob, err := s.results.GetResult(ctx, job.ID)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("result cache unavailable", slog.Any("error", err))
		}
		return viewOf(job), nil
	}

	p, err := domain.ParsePresentation(blob)
	if err != nil {
		log.Error("cached result is malformed", slog.Any("error", err))
		return nil, errors.Join(ErrInvalidResult, err)
	}

	if raw, err := s.statuses.GetStatus(ctx, job.ID); err == nil {
		if st, perr := domain.ParseJobStatus(raw); perr != nil || st != domain.JobStatusCompleted {
			log.Info("result present while status cache disagrees", slog.String("cached_status", raw))
		}
	}

	if view, ok := s.promote(ctx, job, p); ok {
		return view, nil
	}

	// The payload is valid but could not be persisted; serve it and let the
	// next read retry the promotion.
	return &ResultView{JobID: job.ID, Status: domain.JobStatusCompleted, Ready: true, Presentation: p}, nil
}

// ListForPrincipal returns the principal's jobs, newest first.
func (s *JobService) ListForPrincipal(
	ctx context.Context,
	principalID string,
	limit, offset int,
) ([]*domain.Job, error) {
	if principalID == "" {
		return nil, domain.NewValidationError("principal_id", "is required", domain.ErrEmptyPrincipalID)
	}
	jobs, err := s.jobs.ListByPrincipal(ctx, principalID, limit, offset)
	if err != nil {
		return nil, NewJobServiceError("list_jobs", "failed to list jobs", err)
	}
	return jobs, nil
}
