package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/platform/logger"
	"github.com/phrazzld/deckgen-api/internal/store"
)

const jobColumns = `id, principal_id, prompt, slide_count, style, status, presentation, created_at, updated_at`

// PostgresJobStore implements the store.JobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the JobStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

// Create implements store.JobStore.Create
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	payload, err := encodePresentation(job.Presentation)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		job.ID,
		job.PrincipalID,
		job.Prompt,
		job.SlideCount,
		string(job.Style),
		string(job.Status),
		payload,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("job already exists", slog.String("job_id", job.ID))
			return store.ErrJobExists
		}
		log.Error("failed to create job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID))
		return MapError(err)
	}

	log.Info("job created",
		slog.String("job_id", job.ID),
		slog.String("principal_id", job.PrincipalID),
		slog.String("status", string(job.Status)))
	return nil
}

// GetByID implements store.JobStore.GetByID
func (s *PostgresJobStore) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("job not found", slog.String("job_id", id))
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id))
		return nil, MapError(err)
	}
	return job, nil
}

// UpdateStatus implements store.JobStore.UpdateStatus
func (s *PostgresJobStore) UpdateStatus(ctx context.Context, id string, from, to domain.JobStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !to.IsValid() {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidJobStatus)
	}

	err := withinTx(ctx, s.db, func(q store.DBTX) error {
		result, err := q.ExecContext(ctx, `
			UPDATE jobs
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
		`, string(to), s.now(), id, string(from))
		if err != nil {
			return MapError(err)
		}
		n, err := rowsAffected(result)
		if err != nil {
			return err
		}
		if n == 0 {
			return classifyMiss(ctx, q, id, store.ErrStatusConflict)
		}
		return nil
	})
	if err != nil {
		if store.IsConflictError(err) || store.IsNotFoundError(err) {
			log.Debug("job status not updated",
				slog.String("job_id", id),
				slog.String("from", string(from)),
				slog.String("to", string(to)),
				slog.String("reason", err.Error()))
		} else {
			log.Error("failed to update job status",
				slog.String("error", err.Error()),
				slog.String("job_id", id))
		}
		return err
	}

	log.Info("job status updated",
		slog.String("job_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return nil
}

// PromoteResult implements store.JobStore.PromoteResult
func (s *PostgresJobStore) PromoteResult(
	ctx context.Context,
	id string,
	status domain.JobStatus,
	p *domain.Presentation,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if p == nil || status == domain.JobStatusFailed || !status.IsValid() {
		return fmt.Errorf("%w: cannot promote %q result", store.ErrInvalidEntity, status)
	}
	payload, err := encodePresentation(p)
	if err != nil {
		return err
	}

	err = withinTx(ctx, s.db, func(q store.DBTX) error {
		result, err := q.ExecContext(ctx, `
			UPDATE jobs
			SET presentation = $1, status = $2, updated_at = $3
			WHERE id = $4 AND presentation IS NULL AND status <> 'FAILED'
		`, payload, string(status), s.now(), id)
		if err != nil {
			return MapError(err)
		}
		n, err := rowsAffected(result)
		if err != nil {
			return err
		}
		if n == 0 {
			return classifyMiss(ctx, q, id, store.ErrResultConflict)
		}
		return nil
	})
	if err != nil {
		if !store.IsConflictError(err) && !store.IsNotFoundError(err) {
			log.Error("failed to promote job result",
				slog.String("error", err.Error()),
				slog.String("job_id", id))
		}
		return err
	}

	log.Info("job result promoted",
		slog.String("job_id", id),
		slog.String("status", string(status)),
		slog.Int("slides", len(p.Slides)))
	return nil
}

// ListByPrincipal implements store.JobStore.ListByPrincipal
func (s *PostgresJobStore) ListByPrincipal(
	ctx context.Context,
	principalID string,
	limit, offset int,
) ([]*domain.Job, error) {
	limit, offset = normalizePage(limit, offset)
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE principal_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	return s.queryJobs(ctx, "list_by_principal", query, principalID, limit, offset)
}

// FindStale implements store.JobStore.FindStale
func (s *PostgresJobStore) FindStale(
	ctx context.Context,
	statuses []domain.JobStatus,
	olderThan time.Time,
	limit int,
) ([]*domain.Job, error) {
	if len(statuses) == 0 {
		return []*domain.Job{}, nil
	}
	limit, _ = normalizePage(limit, 0)

	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = ANY($1) AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`
	return s.queryJobs(ctx, "find_stale", query, names, olderThan.UTC(), limit)
}

func (s *PostgresJobStore) queryJobs(ctx context.Context, op, query string, args ...any) ([]*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	jobs := []*domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			log.Error("failed to scan job row",
				slog.String("operation", op),
				slog.String("error", err.Error()))
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("queried jobs", slog.String("operation", op), slog.Int("count", len(jobs)))
	return jobs, nil
}

// classifyMiss decides why a conditional update touched no rows.
func classifyMiss(ctx context.Context, q store.DBTX, id string, conflict error) error {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return MapError(err)
	}
	if !exists {
		return store.ErrJobNotFound
	}
	return conflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job     domain.Job
		style   string
		status  string
		payload []byte
	)
	err := row.Scan(
		&job.ID,
		&job.PrincipalID,
		&job.Prompt,
		&job.SlideCount,
		&style,
		&status,
		&payload,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Style = domain.Style(style)
	job.Status = domain.JobStatus(status)
	job.CreatedAt = job.CreatedAt.UTC()
	job.UpdatedAt = job.UpdatedAt.UTC()
	if len(payload) > 0 {
		p, err := domain.ParsePresentation(payload)
		if err != nil {
			return nil, fmt.Errorf("job %s has corrupt presentation: %w", job.ID, err)
		}
		job.Presentation = p
	}
	return &job, nil
}

// encodePresentation returns the JSONB parameter for p, or nil for SQL NULL.
func encodePresentation(p *domain.Presentation) (any, error) {
	if p == nil {
		return nil, nil
	}
	blob, err := p.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode presentation: %w", err)
	}
	return string(blob), nil
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
