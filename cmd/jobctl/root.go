package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phrazzld/deckgen-api/internal/bootstrap"
	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/platform/logger"
	"github.com/phrazzld/deckgen-api/internal/service"
)

// env is the lazily opened runtime shared by one command invocation.
// Commands ask only for what they need, so `token` never dials the
// database and `migrate` never dials Redis.
type env struct {
	cfg    *config.Config
	logger *slog.Logger

	db       *sql.DB
	backends *bootstrap.Backends
}

func (e *env) database(ctx context.Context) (*sql.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := bootstrap.OpenDatabase(ctx, e.cfg.Database, e.logger)
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *env) jobService(ctx context.Context) (*service.JobService, error) {
	db, err := e.database(ctx)
	if err != nil {
		return nil, err
	}
	stores, err := bootstrap.NewStores(e.cfg.Database.Driver, db, e.logger)
	if err != nil {
		return nil, err
	}
	if e.backends == nil {
		e.backends, err = bootstrap.NewBackends(ctx, e.cfg, e.logger)
		if err != nil {
			return nil, err
		}
	}
	return bootstrap.NewJobService(e.cfg, stores, e.backends, e.logger)
}

func (e *env) close() error {
	var errs []error
	if e.backends != nil {
		errs = append(errs, e.backends.Close())
	}
	if e.db != nil {
		errs = append(errs, e.db.Close())
	}
	return errors.Join(errs...)
}

// newRootCmd builds the command tree. The caller closes the returned env
// once the command has finished.
func newRootCmd() (*cobra.Command, *env) {
	e := &env{}

	root := &cobra.Command{
		Use:           "jobctl",
		Short:         "Operate the presentation job database",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				level = cfg.Server.LogLevel
			}
			e.cfg = cfg
			e.logger = logger.New(cmd.ErrOrStderr(), level)
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "", "override server.log_level for this command")

	root.AddCommand(
		migrateCmd(e),
		reapCmd(e),
		statusCmd(e),
		listCmd(e),
		tokenCmd(e),
	)
	return root, e
}
