package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/deckgen-api/internal/cache"
	"github.com/phrazzld/deckgen-api/internal/platform/logger"
	"github.com/phrazzld/deckgen-api/internal/queue"
	"github.com/phrazzld/deckgen-api/internal/store"
)

// QuotaGate is the part of the rate limiter the job service depends on.
type QuotaGate interface {
	// MayGenerate reports whether the principal may start another generation.
	MayGenerate(ctx context.Context, principalID string) (bool, error)

	// RecordGeneration counts one generation against the principal.
	RecordGeneration(ctx context.Context, principalID string) error
}

// Deps groups the collaborators of JobService. All fields are required
// except Logger.
type Deps struct {
	Jobs      store.JobStore
	Limiter   QuotaGate
	Publisher queue.Publisher
	Statuses  cache.StatusCache
	Results   cache.ResultCache
	Logger    *slog.Logger
}

// JobService implements submission and status reconciliation for
// presentation jobs. It holds no mutable state of its own and is safe for
// concurrent use.
type JobService struct {
	jobs      store.JobStore
	limiter   QuotaGate
	publisher queue.Publisher
	statuses  cache.StatusCache
	results   cache.ResultCache
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a JobService.
type Option func(*JobService)

// WithClock overrides the time source used for new jobs.
func WithClock(now func() time.Time) Option {
	return func(s *JobService) { s.now = now }
}

// NewJobService creates a JobService.
// It returns an error if any of the required dependencies are nil.
func NewJobService(deps Deps, opts ...Option) (*JobService, error) {
	required := []struct {
		name string
		nil  bool
	}{
		{"jobs", deps.Jobs == nil},
		{"limiter", deps.Limiter == nil},
		{"publisher", deps.Publisher == nil},
		{"statuses", deps.Statuses == nil},
		{"results", deps.Results == nil},
	}
	for _, r := range required {
		if r.nil {
			return nil, &JobServiceError{
				Operation: "create_service",
				Message:   r.name + " cannot be nil",
			}
		}
	}

	l := deps.Logger
	if l == nil {
		l = slog.Default()
	}

	s := &JobService{
		jobs:      deps.Jobs,
		limiter:   deps.Limiter,
		publisher: deps.Publisher,
		statuses:  deps.Statuses,
		results:   deps.Results,
		logger:    l.With(slog.String("component", "job_service")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// log prefers the request-scoped logger so entries carry the trace id.
func (s *JobService) log(ctx context.Context) *slog.Logger {
	l := logger.FromContextOrDefault(ctx, nil)
	if l == nil {
		return s.logger
	}
	return l.With(slog.String("component", "job_service"))
}
