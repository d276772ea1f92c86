package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/store"
)

// ReapSummary reports what one ExpireStale pass did.
type ReapSummary struct {
	Examined int
	// Settled counts jobs that reconciliation moved to a terminal state.
	Settled int
	Failed  int
	// Skipped counts jobs left for a later sweep: lost races, write
	// failures, and jobs reconciliation showed to be progressing.
	Skipped int
}

var nonTerminal = []domain.JobStatus{domain.JobStatusPending, domain.JobStatusProcessing}

// ExpireStale fails PENDING and PROCESSING jobs not updated since olderThan.
// Each job is reconciled against the caches first, so a job the worker has
// finished is completed rather than failed, and a job the worker has just
// picked up is left alone. Only jobs whose status reconciliation did not
// change are failed.
func (s *JobService) ExpireStale(ctx context.Context, olderThan time.Time, limit int) (ReapSummary, error) {
	var sum ReapSummary

	jobs, err := s.jobs.FindStale(ctx, nonTerminal, olderThan, limit)
	if err != nil {
		return sum, NewJobServiceError("expire_stale", "failed to find stale jobs", err)
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Examined++
		log := s.log(ctx).With(slog.String("job_id", job.ID))

		status := s.reconcile(ctx, job)
		if status.IsTerminal() {
			sum.Settled++
			continue
		}
		if status != job.Status {
			// The worker moved the job since it was last seen, which restarts
			// its staleness clock. A later sweep decides.
			sum.Skipped++
			log.Debug("stale job made progress, not failing",
				slog.String("from", job.Status.String()),
				slog.String("to", status.String()))
			continue
		}

		err := s.jobs.UpdateStatus(ctx, job.ID, status, domain.JobStatusFailed)
		switch {
		case err == nil:
			sum.Failed++
			log.Warn("stale job failed",
				slog.String("previous_status", status.String()),
				slog.Time("updated_at", job.UpdatedAt))
		case errors.Is(err, store.ErrStatusConflict):
			sum.Skipped++
		default:
			sum.Skipped++
			log.Error("failed to expire stale job", slog.Any("error", err))
		}
	}

	if sum.Examined > 0 {
		s.logger.Info("stale job sweep finished",
			slog.Int("examined", sum.Examined),
			slog.Int("settled", sum.Settled),
			slog.Int("failed", sum.Failed),
			slog.Int("skipped", sum.Skipped))
	}
	return sum, nil
}
