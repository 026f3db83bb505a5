package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/ebotics/recon/internal/staging"
)

func newJobsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"ls"},
		Short:   "List import jobs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd.Context(), cmd.OutOrStdout(), a.controller())
		},
	}
}

func runJobs(ctx context.Context, out io.Writer, c *staging.Controller) error {
	jobs, err := c.Refresh(ctx)
	if err != nil {
		flushNotices(out, c.Notices())
		return err
	}
	printJobs(out, jobs)
	return nil
}

func newShowCommand(a *app) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "show <jobID>",
		Short: "Show an import job and a page of its staged rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), cmd.OutOrStdout(), a.controller(), args[0], page)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page to display (1-based)")

	return cmd
}

func runShow(ctx context.Context, out io.Writer, c *staging.Controller, jobID string, page int) error {
	if err := openJob(ctx, c, jobID, page); err != nil {
		flushNotices(out, c.Notices())
		return err
	}
	job, _ := c.Selected()
	printJob(out, job)
	printRows(out, c.Page(), c.Edits())
	return nil
}

// openJob selects jobID and moves to the 1-based page.
func openJob(ctx context.Context, c *staging.Controller, jobID string, page int) error {
	if _, err := c.SelectJob(ctx, jobID); err != nil {
		return err
	}
	if page > 1 {
		if _, err := c.LoadPage(ctx, page-1); err != nil {
			return err
		}
	}
	return nil
}
