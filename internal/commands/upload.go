package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ebotics/recon/internal/staging"
)

func newUploadCommand(a *app) *cobra.Command {
	var name string
	var assignee int64

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Stage a CSV or XLSX check spreadsheet as a new import job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("assignee") {
				assignee = a.cfg.Upload.DefaultAssigneeID
			}
			return runUpload(cmd.Context(), cmd.OutOrStdout(), a.controller(), args[0], name, assignee)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "job name (default from the file name)")
	cmd.Flags().Int64Var(&assignee, "assignee", 0, "default assignee id for rows without one")

	return cmd
}

func runUpload(ctx context.Context, out io.Writer, c *staging.Controller, path, name string, assignee int64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	job, err := c.Upload(ctx, staging.UploadInput{
		FileName:          filepath.Base(path),
		Content:           data,
		JobName:           name,
		DefaultAssigneeID: assignee,
	})
	flushNotices(out, c.Notices())
	if err != nil {
		return err
	}
	printJob(out, job)
	return nil
}
