package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/deckgen-api/internal/bootstrap"
	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/service"
	"github.com/phrazzld/deckgen-api/internal/service/auth"
	"github.com/phrazzld/deckgen-api/internal/worker"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	backends   *bootstrap.Backends
	jobService *service.JobService
	jwtService auth.JWTService
	sweeper    *worker.Sweeper

	// pool is only set when the queue lives in this process.
	pool *worker.Pool
}

// newApplication creates a new application instance with all dependencies
// initialized. On error everything opened so far is released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (_ *application, err error) {
	app := &application{config: cfg, logger: logger}
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	app.db, err = bootstrap.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err = bootstrap.Migrate(ctx, cfg.Database.Driver, app.db, logger); err != nil {
			return nil, err
		}
	}

	stores, err := bootstrap.NewStores(cfg.Database.Driver, app.db, logger)
	if err != nil {
		return nil, err
	}

	app.backends, err = bootstrap.NewBackends(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app.jobService, err = bootstrap.NewJobService(cfg, stores, app.backends, logger)
	if err != nil {
		return nil, err
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.sweeper = worker.NewSweeper(app.jobService, worker.SweeperConfigFromSettings(cfg.Reaper), logger)

	if app.backends.InProcess() {
		gen, gerr := bootstrap.NewGenerator(ctx, cfg.LLM, logger)
		if gerr != nil {
			return nil, gerr
		}
		app.pool, err = bootstrap.NewWorkerPool(cfg, app.backends, gen, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("in-process worker pool configured", "worker_count", cfg.Worker.Count)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the background workers and the HTTP server, and blocks until
// ctx is cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if app.pool != nil {
		app.pool.Start()
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		app.sweeper.Run(sweepCtx)
	}()
	defer func() {
		stopSweep()
		<-sweepDone
	}()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources in reverse order of acquisition. The queue is
// closed first so an in-process pool can finish every buffered item while
// the caches are still open; Redis and the database go last.
func (app *application) cleanup() {
	var errs []error
	if app.backends != nil {
		app.backends.CloseQueue()
	}
	if app.pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := app.pool.Drain(ctx); err != nil {
			app.logger.Warn("worker pool did not drain before the deadline", "error", err)
		}
		cancel()
		app.pool = nil
	}
	if app.backends != nil {
		errs = append(errs, app.backends.Close())
		app.backends = nil
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
		app.db = nil
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Error("error during cleanup", "error", err)
	}
}
