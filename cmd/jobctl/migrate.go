package main

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/phrazzld/deckgen-api/internal/bootstrap"
)

func migrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the job database schema",
	}

	provider := func(cmd *cobra.Command) (*goose.Provider, error) {
		db, err := e.database(cmd.Context())
		if err != nil {
			return nil, err
		}
		return bootstrap.MigrationProvider(e.cfg.Database.Driver, db)
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := provider(cmd)
			if err != nil {
				return err
			}
			results, err := p.Up(cmd.Context())
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "OK   %05d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
			}
			if err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
			}
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := provider(cmd)
			if err != nil {
				return err
			}
			r, err := p.Down(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to roll back migration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DOWN %05d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
			return nil
		},
	}

	statCmd := &cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := provider(cmd)
			if err != nil {
				return err
			}
			statuses, err := p.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read migration status: %w", err)
			}
			for _, s := range statuses {
				applied := "-"
				if !s.AppliedAt.IsZero() {
					applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %05d %s %s\n", s.State, s.Source.Version, s.Source.Path, applied)
			}
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd, statCmd)
	return cmd
}
