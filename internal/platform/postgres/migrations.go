package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// NewMigrationProvider returns a goose provider for the embedded Postgres
// migrations.
func NewMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	provider, err := NewMigrationProvider(db)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		logger.Info("applied migration",
			slog.String("component", "migrations"),
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()))
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
