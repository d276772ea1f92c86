// Package bootstrap assembles the process-level dependencies shared by the
// server, worker and jobctl binaries: the database for the configured driver,
// its stores and migrations, the cache and queue backends, and the services
// built on top of them.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/platform/postgres"
	"github.com/phrazzld/deckgen-api/internal/platform/sqlite"
	"github.com/phrazzld/deckgen-api/internal/store"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// OpenDatabase connects to the job database selected by cfg.Driver.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case DriverPostgres:
		db, err = postgres.Open(ctx, cfg.URL, postgres.DefaultPoolSettings)
	case DriverSQLite:
		db, err = sqlite.Open(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("database connection established", slog.String("driver", cfg.Driver))
	return db, nil
}

// MigrationProvider returns the goose provider holding the embedded
// migrations for driver.
func MigrationProvider(driver string, db *sql.DB) (*goose.Provider, error) {
	switch driver {
	case DriverPostgres:
		return postgres.NewMigrationProvider(db)
	case DriverSQLite:
		return sqlite.NewMigrationProvider(db)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate applies all pending migrations for driver.
func Migrate(ctx context.Context, driver string, db *sql.DB, logger *slog.Logger) error {
	switch driver {
	case DriverPostgres:
		return postgres.Migrate(ctx, db, logger)
	case DriverSQLite:
		return sqlite.Migrate(ctx, db, logger)
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Stores groups the durable stores backed by one database.
type Stores struct {
	Jobs   store.JobStore
	Quotas store.QuotaStore
}

// NewStores builds the job and quota stores for driver on db.
func NewStores(driver string, db *sql.DB, logger *slog.Logger) (Stores, error) {
	switch driver {
	case DriverPostgres:
		return Stores{
			Jobs:   postgres.NewPostgresJobStore(db, logger),
			Quotas: postgres.NewPostgresQuotaStore(db, logger),
		}, nil
	case DriverSQLite:
		return Stores{
			Jobs:   sqlite.NewJobStore(db, logger),
			Quotas: sqlite.NewQuotaStore(db, logger),
		}, nil
	default:
		return Stores{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}
