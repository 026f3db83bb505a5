package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebotics/recon/internal/model"
	"github.com/ebotics/recon/internal/staging"
)

// parseAssignments turns "field=value" pairs into a patch.
func parseAssignments(pairs []string) (model.Patch, error) {
	var p model.Patch
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return model.Patch{}, fmt.Errorf("invalid assignment %q: expected field=value", pair)
		}
		f, err := model.ParseField(key)
		if err != nil {
			return model.Patch{}, err
		}
		if err := p.Set(f, value); err != nil {
			return model.Patch{}, err
		}
	}
	return p, nil
}

// parseRowAssignments groups "ROW.field=value" pairs by row id, keeping the
// order in which rows first appear.
func parseRowAssignments(pairs []string) ([]string, map[string]model.Patch, error) {
	var order []string
	patches := make(map[string]model.Patch)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid assignment %q: expected ROW.field=value", pair)
		}
		i := strings.LastIndex(key, ".")
		if i <= 0 {
			return nil, nil, fmt.Errorf("invalid assignment %q: expected ROW.field=value", pair)
		}
		rowID, field := key[:i], key[i+1:]
		f, err := model.ParseField(field)
		if err != nil {
			return nil, nil, err
		}
		p, seen := patches[rowID]
		if !seen {
			order = append(order, rowID)
		}
		if err := p.Set(f, value); err != nil {
			return nil, nil, err
		}
		patches[rowID] = p
	}
	return order, patches, nil
}

func newSaveCommand(a *app) *cobra.Command {
	var sets []string
	var page int

	cmd := &cobra.Command{
		Use:   "save <jobID> <rowID>",
		Short: "Correct one staged row and send it for validation",
		Long: `Correct one staged row. Fields not given with --set keep their staged values.

Example:
  recon save 7f3c... 9a1e... --set payer=Aetna --set checkAmount=1250.00`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			return runSave(cmd.Context(), cmd.OutOrStdout(), a.controller(), args[0], args[1], page, form)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to change (repeatable)")
	cmd.Flags().IntVar(&page, "page", 1, "page holding the row (1-based)")

	return cmd
}

func runSave(ctx context.Context, out io.Writer, c *staging.Controller, jobID, rowID string, page int, form model.Patch) error {
	if err := openJob(ctx, c, jobID, page); err != nil {
		flushNotices(out, c.Notices())
		return err
	}
	job, err := c.SaveRow(ctx, rowID, form)
	flushNotices(out, c.Notices())
	if err != nil {
		return err
	}
	printJob(out, job)
	if row, ok := c.Row(rowID); ok && len(row.ValidationErrors) > 0 {
		fmt.Fprintln(out, failStyle.Render("  "+strings.Join(row.ValidationErrors, "; ")))
	}
	return nil
}

func newRevalidateCommand(a *app) *cobra.Command {
	var sets []string
	var page int

	cmd := &cobra.Command{
		Use:   "revalidate <jobID>",
		Short: "Re-run validation for a job, committing any corrections in one call",
		Long: `Re-run validation for a job. Corrections given with --set are sent together
in a single bulk update; without any, the job is revalidated as staged.

Example:
  recon revalidate 7f3c... --set 9a1e....payer=Aetna --set 4b2d....dateOfDeposit=02/01/2025`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, patches, err := parseRowAssignments(sets)
			if err != nil {
				return err
			}
			return runRevalidate(cmd.Context(), cmd.OutOrStdout(), a.controller(), args[0], page, order, patches)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "ROW.field=value to change (repeatable)")
	cmd.Flags().IntVar(&page, "page", 1, "page holding the rows (1-based)")

	return cmd
}

func runRevalidate(ctx context.Context, out io.Writer, c *staging.Controller, jobID string, page int, order []string, patches map[string]model.Patch) error {
	if err := openJob(ctx, c, jobID, page); err != nil {
		flushNotices(out, c.Notices())
		return err
	}
	for _, rowID := range order {
		if err := c.EditRow(rowID, patches[rowID]); err != nil {
			return fmt.Errorf("editing row %s: %w", rowID, err)
		}
	}
	job, err := c.RevalidateAll(ctx)
	flushNotices(out, c.Notices())
	if err != nil {
		return err
	}
	printJob(out, job)
	return nil
}
