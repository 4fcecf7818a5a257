package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"coursecast/internal/jobs"
)

func newJobsCommand(cctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage the local job history",
	}

	jobsCmd.AddCommand(newJobsListCommand(cctx))
	jobsCmd.AddCommand(newJobsShowCommand(cctx))
	jobsCmd.AddCommand(newJobsRetryCommand(cctx))
	jobsCmd.AddCommand(newJobsClearCommand(cctx))

	return jobsCmd
}

func newJobsListCommand(cctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var statuses []jobs.Status
			for _, raw := range strings.Split(statusFilter, ",") {
				raw = strings.TrimSpace(strings.ToLower(raw))
				if raw == "" {
					continue
				}
				status := jobs.Status(raw)
				if !status.Valid() {
					return fmt.Errorf("unknown status %q", raw)
				}
				statuses = append(statuses, status)
			}

			list, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No jobs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, job := range list {
				rows = append(rows, []string{
					strconv.FormatInt(job.ID, 10),
					job.Topic,
					string(job.Status),
					job.Stage,
					fmt.Sprintf("%.0f%%", job.Progress*100),
					fmt.Sprintf("%d/%d", job.ChunksCompleted, job.ChunkCount),
					job.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Topic", "Status", "Stage", "Progress", "Chunks", "Created"},
				rows,
				1, 5, 6,
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Comma-separated status filter (pending, generating, completed, failed, cancelled)")
	return cmd
}

func newJobsShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if job == nil {
				return fmt.Errorf("job %d not found", id)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %d\n", job.ID)
			fmt.Fprintf(out, "  Topic:     %s\n", job.Topic)
			if job.Title != "" {
				fmt.Fprintf(out, "  Title:     %s\n", job.Title)
			}
			fmt.Fprintf(out, "  Status:    %s\n", job.Status)
			fmt.Fprintf(out, "  Stage:     %s (%.0f%%)\n", job.Stage, job.Progress*100)
			fmt.Fprintf(out, "  Chunks:    %d/%d\n", job.ChunksCompleted, job.ChunkCount)
			if job.Message != "" {
				fmt.Fprintf(out, "  Message:   %s\n", job.Message)
			}
			if job.OutputPath != "" {
				fmt.Fprintf(out, "  Output:    %s\n", job.OutputPath)
			}
			if job.OutputURL != "" {
				fmt.Fprintf(out, "  Published: %s\n", job.OutputURL)
			}
			if job.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:     [%s] %s (recoverable: %s)\n", job.ErrorCode, job.ErrorMessage, yesNo(job.Recoverable))
			}
			fmt.Fprintf(out, "  Created:   %s\n", job.CreatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "  Updated:   %s\n", job.UpdatedAt.Local().Format(time.RFC3339))
			return nil
		},
	}
}

func newJobsRetryCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Reset a failed or cancelled job so it can be generated again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			reset, err := store.ResetForRetry(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !reset {
				return fmt.Errorf("job %d is not in a retryable state (only failed or cancelled jobs can be retried)", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %d reset to pending.\n", id)
			return nil
		},
	}
}

func newJobsClearCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove completed, failed, and cancelled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.ClearTerminal(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d finished job(s).\n", removed)
			return nil
		},
	}
}
