package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ebotics/recon/internal/staging"
)

// askConfirm shows a yes/no prompt for conf.
func askConfirm(conf staging.Confirmation, affirmative string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(conf.Prompt).
				Description(conf.Details).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return ok, nil
}

// settle asks for (or skips) confirmation of the pending action, then
// confirms or cancels it on the controller.
func settle(ctx context.Context, out io.Writer, c *staging.Controller, affirmative string, yes bool) error {
	conf, ok := c.Pending()
	if !ok {
		return staging.ErrNoPendingConfirmation
	}
	if !yes {
		ok, err := askConfirm(conf, affirmative)
		if err != nil {
			c.Cancel()
			return err
		}
		if !ok {
			c.Cancel()
			fmt.Fprintln(out, mutedStyle.Render("Cancelled."))
			return nil
		}
	}
	err := c.Confirm(ctx)
	flushNotices(out, c.Notices())
	return err
}

func newPromoteCommand(a *app) *cobra.Command {
	var dryRun bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "promote <jobID>",
		Short: "Promote a job's valid rows to permanent check records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromote(cmd.Context(), cmd.OutOrStdout(), a.controller(), args[0], dryRun, yes)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be promoted without changing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runPromote(ctx context.Context, out io.Writer, c *staging.Controller, jobID string, dryRun, yes bool) error {
	job, err := c.SelectJob(ctx, jobID)
	if err != nil {
		flushNotices(out, c.Notices())
		return err
	}

	if dryRun {
		preview, err := c.PreviewPromote(ctx)
		flushNotices(out, c.Notices())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Would promote %d rows; %d invalid rows would remain (%s).\n",
			job.ValidRows, preview.InvalidRows, preview.Status)
		return nil
	}

	if _, err := c.RequestPromote(); err != nil {
		return err
	}
	if err := settle(ctx, out, c, "Promote", yes); err != nil {
		return err
	}
	if job, ok := c.Selected(); ok {
		printJob(out, job)
	}
	return nil
}

func newDeleteCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <jobID>",
		Aliases: []string{"rm"},
		Short:   "Delete an import job and its staged rows",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), cmd.OutOrStdout(), a.controller(), args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runDelete(ctx context.Context, out io.Writer, c *staging.Controller, jobID string, yes bool) error {
	if _, err := c.Refresh(ctx); err != nil {
		flushNotices(out, c.Notices())
		return err
	}
	if _, err := c.RequestDelete(jobID); err != nil {
		return err
	}
	return settle(ctx, out, c, "Delete", yes)
}
