package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/platform/logger"
	"github.com/phrazzld/deckgen-api/internal/store"
)

const jobColumns = `id, principal_id, prompt, slide_count, style, status, presentation, created_at, updated_at`

// JobStore implements store.JobStore on SQLite.
type JobStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewJobStore creates a SQLite job store. If logger is nil, a default logger will be used.
func NewJobStore(db store.DBTX, logger *slog.Logger) *JobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
		now:    time.Now,
	}
}

var _ store.JobStore = (*JobStore)(nil)

// Create implements store.JobStore.Create
func (s *JobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	payload, err := encodePresentation(job.Presentation)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.PrincipalID,
		job.Prompt,
		job.SlideCount,
		string(job.Style),
		string(job.Status),
		payload,
		toMillis(job.CreatedAt),
		toMillis(job.UpdatedAt),
	)
	if err != nil {
		mapped := mapError(err)
		if store.IsDuplicateError(mapped) {
			return store.ErrJobExists
		}
		log.Error("failed to create job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID))
		return mapped
	}

	log.Info("job created",
		slog.String("job_id", job.ID),
		slog.String("principal_id", job.PrincipalID))
	return nil
}

// GetByID implements store.JobStore.GetByID
func (s *JobStore) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job, err := scanJob(s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id))
		return nil, mapError(err)
	}
	return job, nil
}

// UpdateStatus implements store.JobStore.UpdateStatus
func (s *JobStore) UpdateStatus(ctx context.Context, id string, from, to domain.JobStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidJobStatus)
	}

	return withinTx(ctx, s.db, func(q store.DBTX) error {
		result, err := q.ExecContext(ctx,
			`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			string(to), toMillis(s.now()), id, string(from))
		if err != nil {
			return mapError(err)
		}
		return s.checkApplied(ctx, q, result, id, store.ErrStatusConflict)
	})
}

// PromoteResult implements store.JobStore.PromoteResult
func (s *JobStore) PromoteResult(
	ctx context.Context,
	id string,
	status domain.JobStatus,
	p *domain.Presentation,
) error {
	if p == nil || status == domain.JobStatusFailed || !status.IsValid() {
		return fmt.Errorf("%w: cannot promote %q result", store.ErrInvalidEntity, status)
	}
	payload, err := encodePresentation(p)
	if err != nil {
		return err
	}

	return withinTx(ctx, s.db, func(q store.DBTX) error {
		result, err := q.ExecContext(ctx, `
			UPDATE jobs
			SET presentation = ?, status = ?, updated_at = ?
			WHERE id = ? AND presentation IS NULL AND status <> 'FAILED'
		`, payload, string(status), toMillis(s.now()), id)
		if err != nil {
			return mapError(err)
		}
		return s.checkApplied(ctx, q, result, id, store.ErrResultConflict)
	})
}

// ListByPrincipal implements store.JobStore.ListByPrincipal
func (s *JobStore) ListByPrincipal(
	ctx context.Context,
	principalID string,
	limit, offset int,
) ([]*domain.Job, error) {
	limit, offset = normalizePage(limit, offset)
	return s.queryJobs(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE principal_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, principalID, limit, offset)
}

// FindStale implements store.JobStore.FindStale
func (s *JobStore) FindStale(
	ctx context.Context,
	statuses []domain.JobStatus,
	olderThan time.Time,
	limit int,
) ([]*domain.Job, error) {
	if len(statuses) == 0 {
		return []*domain.Job{}, nil
	}
	limit, _ = normalizePage(limit, 0)

	placeholders := make([]string, len(statuses))
	args := make([]any, 0, len(statuses)+2)
	for i, st := range statuses {
		placeholders[i] = "?"
		args = append(args, string(st))
	}
	args = append(args, toMillis(olderThan), limit)

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status IN (` + strings.Join(placeholders, ", ") + `) AND updated_at < ?
		ORDER BY updated_at ASC
		LIMIT ?
	`
	return s.queryJobs(ctx, query, args...)
}

func (s *JobStore) checkApplied(
	ctx context.Context,
	q store.DBTX,
	result sql.Result,
	id string,
	conflict error,
) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = q.QueryRowContext(ctx, `SELECT COUNT(1) FROM jobs WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return mapError(err)
	}
	if exists == 0 {
		return store.ErrJobNotFound
	}
	return conflict
}

func (s *JobStore) queryJobs(ctx context.Context, query string, args ...any) ([]*domain.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query jobs",
			slog.String("error", err.Error()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	jobs := []*domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job                  domain.Job
		style, status        string
		payload              sql.NullString
		createdMs, updatedMs int64
	)
	if err := row.Scan(
		&job.ID,
		&job.PrincipalID,
		&job.Prompt,
		&job.SlideCount,
		&style,
		&status,
		&payload,
		&createdMs,
		&updatedMs,
	); err != nil {
		return nil, err
	}

	job.Style = domain.Style(style)
	job.Status = domain.JobStatus(status)
	job.CreatedAt = fromMillis(createdMs)
	job.UpdatedAt = fromMillis(updatedMs)
	if payload.Valid && payload.String != "" {
		p, err := domain.ParsePresentation([]byte(payload.String))
		if err != nil {
			return nil, fmt.Errorf("job %s has corrupt presentation: %w", job.ID, err)
		}
		job.Presentation = p
	}
	return &job, nil
}

func encodePresentation(p *domain.Presentation) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	blob, err := p.Marshal()
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode presentation: %w", err)
	}
	return sql.NullString{String: string(blob), Valid: true}, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
