package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebotics/recon/internal/activity"
	"github.com/ebotics/recon/internal/intake"
	"github.com/ebotics/recon/internal/staging"
)

func newExportInvalidCommand(a *app) *cobra.Command {
	var format string
	var dir string

	cmd := &cobra.Command{
		Use:   "export-invalid <jobID>",
		Short: "Download every invalid row of a job for offline correction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Export.Format
			}
			if dir == "" {
				dir = a.cfg.Export.Dir
			}
			return runExportInvalid(cmd.Context(), cmd.OutOrStdout(), a.controller(), args[0], intake.Format(strings.ToLower(format)), dir)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx (default from config)")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default from config)")

	return cmd
}

func runExportInvalid(ctx context.Context, out io.Writer, c *staging.Controller, jobID string, format intake.Format, dir string) error {
	if _, err := c.SelectJob(ctx, jobID); err != nil {
		flushNotices(out, c.Notices())
		return err
	}
	_, err := c.DownloadInvalidRows(ctx, dir, format)
	flushNotices(out, c.Notices())
	if errors.Is(err, staging.ErrNoInvalidRows) {
		return nil
	}
	return err
}

func newActivityCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent workflow activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivity(cmd.OutOrStdout(), a.cfg.Activity.Path, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show (0 for all)")

	return cmd
}

func runActivity(out io.Writer, path string, limit int) error {
	if path == "" {
		return errors.New("no activity log configured (set activity.path or RECON_ACTIVITY_LOG)")
	}
	entries, err := activity.Read(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No activity recorded."))
		return nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	w := newTable(out)
	writeHeader(w, "TIME", "ACTION", "JOB", "ROWS", "OUTCOME", "DETAILS")
	for _, e := range entries {
		outcome := passStyle.Render(e.Outcome)
		if e.Outcome != activity.OutcomeOK {
			outcome = failStyle.Render(e.Outcome)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.JobID, e.RowCount, outcome, e.Details)
	}
	w.Flush()
	return nil
}
