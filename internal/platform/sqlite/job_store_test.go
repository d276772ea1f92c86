package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/platform/sqlite"
	"github.com/phrazzld/deckgen-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db, testLogger()))
	return db
}

func newJob(principal string, created time.Time) *domain.Job {
	created = created.UTC().Truncate(time.Millisecond)
	return &domain.Job{
		ID:          uuid.NewString(),
		PrincipalID: principal,
		Prompt:      "Explain quantum computing basics",
		SlideCount:  10,
		Style:       domain.StyleModern,
		Status:      domain.JobStatusPending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func tenSlideDeck() *domain.Presentation {
	slides := make([]domain.Slide, 10)
	for i := range slides {
		slides[i] = domain.Slide{Type: "content", Title: "Slide", Bullets: []string{"a", "b", "c"}}
	}
	return &domain.Presentation{Title: "Quantum Computing", Slides: slides}
}

func TestJobStore_CreateAndGet(t *testing.T) {
	s := sqlite.NewJobStore(openTestDB(t), testLogger())
	ctx := context.Background()

	job := newJob("user-1", time.Now())
	require.NoError(t, s.Create(ctx, job))

	got, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.PrincipalID, got.PrincipalID)
	assert.Equal(t, job.Prompt, got.Prompt)
	assert.Equal(t, job.SlideCount, got.SlideCount)
	assert.Equal(t, job.Style, got.Style)
	assert.Equal(t, domain.JobStatusPending, got.Status)
	assert.Nil(t, got.Presentation)
	assert.True(t, job.CreatedAt.Equal(got.CreatedAt))

	assert.ErrorIs(t, s.Create(ctx, job), store.ErrJobExists)

	_, err = s.GetByID(ctx, "unknown-id")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestJobStore_UpdateStatus(t *testing.T) {
	s := sqlite.NewJobStore(openTestDB(t), testLogger())
	ctx := context.Background()
	job := newJob("user-1", time.Now().Add(-time.Hour))
	require.NoError(t, s.Create(ctx, job))

	require.NoError(t, s.UpdateStatus(ctx, job.ID, domain.JobStatusPending, domain.JobStatusProcessing))

	got, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusProcessing, got.Status)
	assert.True(t, got.UpdatedAt.After(job.UpdatedAt), "updated timestamp is bumped")

	err = s.UpdateStatus(ctx, job.ID, domain.JobStatusPending, domain.JobStatusCompleted)
	assert.ErrorIs(t, err, store.ErrStatusConflict)

	err = s.UpdateStatus(ctx, "unknown-id", domain.JobStatusPending, domain.JobStatusProcessing)
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestJobStore_PromoteResult(t *testing.T) {
	s := sqlite.NewJobStore(openTestDB(t), testLogger())
	ctx := context.Background()
	job := newJob("user-1", time.Now())
	require.NoError(t, s.Create(ctx, job))

	deck := tenSlideDeck()
	require.NoError(t, s.PromoteResult(ctx, job.ID, domain.JobStatusCompleted, deck))

	got, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, got.Status)
	assert.Equal(t, deck, got.Presentation)

	other := &domain.Presentation{Title: "Other", Slides: []domain.Slide{{Type: "title", Title: "x"}}}
	err = s.PromoteResult(ctx, job.ID, domain.JobStatusCompleted, other)
	assert.ErrorIs(t, err, store.ErrResultConflict)

	got, err = s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, deck, got.Presentation, "promoted payload is immutable")
}

func TestJobStore_PromoteResult_FailedJob(t *testing.T) {
	s := sqlite.NewJobStore(openTestDB(t), testLogger())
	ctx := context.Background()
	job := newJob("user-1", time.Now())
	require.NoError(t, s.Create(ctx, job))
	require.NoError(t, s.UpdateStatus(ctx, job.ID, domain.JobStatusPending, domain.JobStatusFailed))

	err := s.PromoteResult(ctx, job.ID, domain.JobStatusCompleted, tenSlideDeck())
	assert.ErrorIs(t, err, store.ErrResultConflict)

	err = s.PromoteResult(ctx, "unknown-id", domain.JobStatusCompleted, tenSlideDeck())
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestJobStore_PromoteResult_ConcurrentReaders(t *testing.T) {
	s := sqlite.NewJobStore(openTestDB(t), testLogger())
	ctx := context.Background()
	job := newJob("user-1", time.Now())
	require.NoError(t, s.Create(ctx, job))

	const readers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.PromoteResult(ctx, job.ID, domain.JobStatusCompleted, tenSlideDeck())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, store.ErrResultConflict):
				conflicts++
			default:
				t.Errorf("unexpected promote error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, readers-1, conflicts)
}

func TestJobStore_ListByPrincipal(t *testing.T) {
	s := sqlite.NewJobStore(openTestDB(t), testLogger())
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	first := newJob("user-1", base)
	second := newJob("user-1", base.Add(time.Minute))
	foreign := newJob("user-2", base)
	for _, j := range []*domain.Job{first, second, foreign} {
		require.NoError(t, s.Create(ctx, j))
	}

	jobs, err := s.ListByPrincipal(ctx, "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID, "newest first")
	assert.Equal(t, first.ID, jobs[1].ID)

	jobs, err = s.ListByPrincipal(ctx, "user-1", 1, 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, first.ID, jobs[0].ID)

	jobs, err = s.ListByPrincipal(ctx, "nobody", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestJobStore_FindStale(t *testing.T) {
	s := sqlite.NewJobStore(openTestDB(t), testLogger())
	ctx := context.Background()
	now := time.Now()

	stalePending := newJob("user-1", now.Add(-2*time.Hour))
	staleCompleted := newJob("user-1", now.Add(-3*time.Hour))
	staleCompleted.Status = domain.JobStatusCompleted
	staleCompleted.Presentation = tenSlideDeck()
	fresh := newJob("user-1", now)
	for _, j := range []*domain.Job{stalePending, staleCompleted, fresh} {
		require.NoError(t, s.Create(ctx, j))
	}

	jobs, err := s.FindStale(ctx,
		[]domain.JobStatus{domain.JobStatusPending, domain.JobStatusProcessing},
		now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, stalePending.ID, jobs[0].ID)
}

func TestQuotaStore_CountInWindow(t *testing.T) {
	s := sqlite.NewQuotaStore(openTestDB(t), testLogger())
	ctx := context.Background()
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, "user-1", day.Add(-time.Millisecond)))
	require.NoError(t, s.Record(ctx, "user-1", day))
	require.NoError(t, s.Record(ctx, "user-1", day.Add(23*time.Hour)))
	require.NoError(t, s.Record(ctx, "user-1", day.Add(24*time.Hour)))
	require.NoError(t, s.Record(ctx, "user-2", day.Add(time.Hour)))

	count, err := s.CountInWindow(ctx, "user-1", day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count, "window is half-open")
}

func TestJobStore_InTransaction(t *testing.T) {
	db := openTestDB(t)
	s := sqlite.NewJobStore(db, testLogger())
	ctx := context.Background()
	job := newJob("user-1", time.Now())

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if err := sqlite.NewJobStore(tx, testLogger()).Create(ctx, job); err != nil {
			return err
		}
		return store.ErrTransactionFailed
	})
	require.ErrorIs(t, err, store.ErrTransactionFailed)

	_, err = s.GetByID(ctx, job.ID)
	assert.ErrorIs(t, err, store.ErrJobNotFound, "rolled back create is not visible")
}
