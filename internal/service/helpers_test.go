package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/mocks"
	"github.com/phrazzld/deckgen-api/internal/ratelimit"
	"github.com/phrazzld/deckgen-api/internal/service"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *service.JobService
	jobs      *mocks.MockJobStore
	quota     *mocks.MockQuotaStore
	publisher *mocks.MockPublisher
	cache     *mocks.MockCache
	now       time.Time
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		jobs:      mocks.NewMockJobStore(),
		quota:     mocks.NewMockQuotaStore(),
		publisher: &mocks.MockPublisher{},
		cache:     mocks.NewMockCache(),
		now:       time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.jobs.Now = clock

	limiter, err := ratelimit.NewLimiter(f.quota, 1, time.UTC, discardLogger(), ratelimit.WithClock(clock))
	require.NoError(t, err)

	f.svc, err = service.NewJobService(service.Deps{
		Jobs:      f.jobs,
		Limiter:   limiter,
		Publisher: f.publisher,
		Statuses:  f.cache,
		Results:   f.cache,
		Logger:    discardLogger(),
	}, service.WithClock(clock))
	require.NoError(t, err)
	return f
}

func validRequest(principal string) domain.SubmissionRequest {
	return domain.SubmissionRequest{
		PrincipalID: principal,
		Prompt:      "Explain quantum computing basics",
		SlideCount:  10,
		Style:       "modern",
	}
}

// submit creates a job through the service and returns its id.
func (f *fixture) submit(t *testing.T, principal string) string {
	t.Helper()
	res, err := f.svc.Submit(context.Background(), validRequest(principal))
	require.NoError(t, err)
	return res.JobID
}

// statusOf returns the durable status of a job.
func (f *fixture) statusOf(t *testing.T, id string) domain.JobStatus {
	t.Helper()
	job, ok := f.jobs.Get(id)
	require.True(t, ok)
	return job.Status
}

func deck(n int) *domain.Presentation {
	p := &domain.Presentation{Title: "Quantum Computing Basics"}
	for i := 0; i < n; i++ {
		p.Slides = append(p.Slides, domain.Slide{
			Type:    "content",
			Title:   fmt.Sprintf("Slide %d", i+1),
			Bullets: []string{"qubits", "superposition"},
		})
	}
	return p
}

func deckBlob(t *testing.T, n int) []byte {
	t.Helper()
	blob, err := deck(n).Marshal()
	require.NoError(t, err)
	return blob
}
