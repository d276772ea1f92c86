package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/deckgen-api/internal/store"
)

// QuotaStore implements store.QuotaStore on SQLite.
type QuotaStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewQuotaStore creates a SQLite quota store.
func NewQuotaStore(db store.DBTX, logger *slog.Logger) *QuotaStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuotaStore{db: db, logger: logger.With(slog.String("component", "quota_store"))}
}

var _ store.QuotaStore = (*QuotaStore)(nil)

// CountInWindow implements store.QuotaStore.CountInWindow
func (s *QuotaStore) CountInWindow(ctx context.Context, principalID string, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM generation_records
		WHERE principal_id = ? AND created_at >= ? AND created_at < ?
	`, principalID, toMillis(from), toMillis(to)).Scan(&count)
	if err != nil {
		s.logger.Error("failed to count generation records",
			slog.String("error", err.Error()),
			slog.String("principal_id", principalID))
		return 0, mapError(err)
	}
	return count, nil
}

// Record implements store.QuotaStore.Record
func (s *QuotaStore) Record(ctx context.Context, principalID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_records (principal_id, created_at) VALUES (?, ?)`,
		principalID, toMillis(at))
	if err != nil {
		s.logger.Error("failed to insert generation record",
			slog.String("error", err.Error()),
			slog.String("principal_id", principalID))
		return mapError(err)
	}
	return nil
}
