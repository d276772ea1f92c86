package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/queue"
)

// SubmitResult describes a job accepted by Submit.
type SubmitResult struct {
	JobID string
	// Job is the PENDING snapshot written to the store.
	Job *domain.Job
}

// Submit validates a request, checks the principal's daily quota, creates a
// PENDING job and hands it to the worker queue.
//
// When the job was created but could not be enqueued, Submit returns both
// the result and an error wrapping ErrEnqueueFailed. No quota is consumed in
// that case; the job is later failed by ExpireStale.
func (s *JobService) Submit(ctx context.Context, req domain.SubmissionRequest) (*SubmitResult, error) {
	log := s.log(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	principalID := req.Normalized().PrincipalID
	allowed, err := s.limiter.MayGenerate(ctx, principalID)
	if err != nil {
		log.Error("failed to check generation quota",
			slog.String("principal_id", principalID),
			slog.Any("error", err))
		return nil, NewJobServiceError("submit", "failed to check quota", err)
	}
	if !allowed {
		return nil, ErrQuotaExceeded
	}

	job, err := domain.NewJob(req, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		log.Error("failed to create job",
			slog.String("principal_id", principalID),
			slog.String("job_id", job.ID),
			slog.Any("error", err))
		return nil, NewJobServiceError("submit", "failed to save job", err)
	}

	result := &SubmitResult{JobID: job.ID, Job: job}

	item := queue.WorkItem{
		JobID:      job.ID,
		Prompt:     job.Prompt,
		SlideCount: job.SlideCount,
		Style:      string(job.Style),
	}
	if err := s.publisher.Push(ctx, item); err != nil {
		log.Error("failed to enqueue job",
			slog.String("job_id", job.ID),
			slog.Any("error", err))
		return result, fmt.Errorf("%w: %w", ErrEnqueueFailed, err)
	}

	// The quota is advisory: a failed record under-counts but the job stands.
	if err := s.limiter.RecordGeneration(ctx, principalID); err != nil {
		log.Error("failed to record generation",
			slog.String("principal_id", principalID),
			slog.String("job_id", job.ID),
			slog.Any("error", err))
	}

	log.Info("job submitted",
		slog.String("job_id", job.ID),
		slog.String("principal_id", principalID),
		slog.Int("number_of_slides", job.SlideCount),
		slog.String("style", job.Style.String()))

	return result, nil
}
