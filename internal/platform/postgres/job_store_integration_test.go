//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/platform/postgres"
	"github.com/phrazzld/deckgen-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to DECKGEN_DATABASE_URL and applies migrations.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("DECKGEN_DATABASE_URL")
	if url == "" {
		t.Skip("DECKGEN_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, url, postgres.DefaultPoolSettings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, postgres.Migrate(ctx, db, testLogger()))
	return db
}

func newJob(principal string) *domain.Job {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Job{
		ID:          uuid.NewString(),
		PrincipalID: principal,
		Prompt:      "Explain quantum computing basics",
		SlideCount:  10,
		Style:       domain.StyleModern,
		Status:      domain.JobStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestJobStoreLifecycle(t *testing.T) {
	db := openTestDB(t)
	s := postgres.NewPostgresJobStore(db, testLogger())
	ctx := context.Background()

	job := newJob("principal-" + uuid.NewString())
	require.NoError(t, s.Create(ctx, job))
	assert.ErrorIs(t, s.Create(ctx, job), store.ErrJobExists)

	got, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, got.Status)
	assert.True(t, job.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, s.UpdateStatus(ctx, job.ID, domain.JobStatusPending, domain.JobStatusProcessing))
	assert.ErrorIs(t,
		s.UpdateStatus(ctx, job.ID, domain.JobStatusPending, domain.JobStatusProcessing),
		store.ErrStatusConflict)

	deck := &domain.Presentation{Title: "Q", Slides: []domain.Slide{{Type: "title", Title: "Q"}}}
	require.NoError(t, s.PromoteResult(ctx, job.ID, domain.JobStatusCompleted, deck))
	assert.ErrorIs(t, s.PromoteResult(ctx, job.ID, domain.JobStatusCompleted, deck), store.ErrResultConflict)

	got, err = s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, got.Status)
	assert.Equal(t, deck, got.Presentation)

	_, err = s.GetByID(ctx, "unknown-id")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestJobStoreListAndFindStale(t *testing.T) {
	db := openTestDB(t)
	s := postgres.NewPostgresJobStore(db, testLogger())
	ctx := context.Background()
	principal := "principal-" + uuid.NewString()

	older := newJob(principal)
	older.CreatedAt = older.CreatedAt.Add(-2 * time.Hour)
	older.UpdatedAt = older.CreatedAt
	newer := newJob(principal)
	require.NoError(t, s.Create(ctx, older))
	require.NoError(t, s.Create(ctx, newer))

	jobs, err := s.ListByPrincipal(ctx, principal, 10, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, newer.ID, jobs[0].ID)

	stale, err := s.FindStale(ctx,
		[]domain.JobStatus{domain.JobStatusPending, domain.JobStatusProcessing},
		time.Now().UTC().Add(-time.Hour), 1000)
	require.NoError(t, err)
	ids := make([]string, 0, len(stale))
	for _, j := range stale {
		ids = append(ids, j.ID)
	}
	assert.Contains(t, ids, older.ID)
	assert.NotContains(t, ids, newer.ID)
}

func TestQuotaStoreWindow(t *testing.T) {
	db := openTestDB(t)
	s := postgres.NewPostgresQuotaStore(db, testLogger())
	ctx := context.Background()
	principal := "principal-" + uuid.NewString()

	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, principal, day.Add(time.Hour)))
	require.NoError(t, s.Record(ctx, principal, day.Add(-time.Minute)))

	count, err := s.CountInWindow(ctx, principal, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
