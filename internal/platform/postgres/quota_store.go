package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/deckgen-api/internal/platform/logger"
	"github.com/phrazzld/deckgen-api/internal/store"
)

// PostgresQuotaStore implements store.QuotaStore on the generation_records table.
type PostgresQuotaStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuotaStore creates a PostgresQuotaStore. If logger is nil, a default logger will be used.
func NewPostgresQuotaStore(db store.DBTX, logger *slog.Logger) *PostgresQuotaStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuotaStore{
		db:     db,
		logger: logger.With(slog.String("component", "quota_store")),
	}
}

var _ store.QuotaStore = (*PostgresQuotaStore)(nil)

// CountInWindow implements store.QuotaStore.CountInWindow
func (s *PostgresQuotaStore) CountInWindow(
	ctx context.Context,
	principalID string,
	from, to time.Time,
) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM generation_records
		WHERE principal_id = $1 AND created_at >= $2 AND created_at < $3
	`, principalID, from.UTC(), to.UTC()).Scan(&count)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count generation records",
			slog.String("error", err.Error()),
			slog.String("principal_id", principalID))
		return 0, MapError(err)
	}
	return count, nil
}

// Record implements store.QuotaStore.Record
func (s *PostgresQuotaStore) Record(ctx context.Context, principalID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_records (principal_id, created_at) VALUES ($1, $2)`,
		principalID, at.UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert generation record",
			slog.String("error", err.Error()),
			slog.String("principal_id", principalID))
		return MapError(err)
	}
	return nil
}
