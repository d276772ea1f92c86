package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/worker"
)

func reapCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Fail PENDING and PROCESSING jobs that have stopped making progress",
		Long: "Reconciles every stale job against the status cache first, so jobs the\n" +
			"worker already finished are completed instead of failed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := e.jobService(cmd.Context())
			if err != nil {
				return err
			}

			settings := worker.SweeperConfigFromSettings(e.cfg.Reaper)
			if cmd.Flags().Changed("older-than") {
				settings.StaleAfter, _ = cmd.Flags().GetDuration("older-than")
			}
			if cmd.Flags().Changed("limit") {
				settings.BatchSize, _ = cmd.Flags().GetInt("limit")
			}

			sum, err := worker.NewSweeper(jobs, settings, e.logger).RunOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("reap failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "examined=%d settled=%d failed=%d skipped=%d\n",
				sum.Examined, sum.Settled, sum.Failed, sum.Skipped)
			return nil
		},
	}
	cmd.Flags().Duration("older-than", 30*time.Minute, "reap jobs not updated for this long (default reaper.stale_after_minutes)")
	cmd.Flags().Int("limit", 100, "maximum number of jobs to examine (default reaper.batch_size)")
	return cmd
}

func statusCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Print the status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := e.jobService(cmd.Context())
			if err != nil {
				return err
			}

			stored, _ := cmd.Flags().GetBool("stored")
			var status domain.JobStatus
			if stored {
				status, err = jobs.GetStoredStatus(cmd.Context(), args[0])
			} else {
				status, err = jobs.GetStatus(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().Bool("stored", false, "read the durable status without consulting the cache")
	return cmd
}

func listCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <principal-id>",
		Short: "List a principal's jobs, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := e.jobService(cmd.Context())
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			list, err := jobs.ListForPrincipal(cmd.Context(), args[0], limit, offset)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no jobs for %s\n", args[0])
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tSLIDES\tSTYLE\tCREATED")
			for _, j := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					j.ID, j.Status, j.SlideCount, j.Style, j.CreatedAt.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of jobs to print")
	cmd.Flags().Int("offset", 0, "number of jobs to skip")
	return cmd
}
