package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebotics/recon/internal/export"
	"github.com/ebotics/recon/internal/intake"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Check a spreadsheet for the required template columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args[0])
		},
	}
}

func runCheck(out io.Writer, path string) error {
	res, err := intake.CheckFile(path)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		fmt.Fprintln(out, failStyle.Render("✗ "+err.Error()))
		return err
	}
	fmt.Fprintln(out, passStyle.Render(fmt.Sprintf("✓ %s has all %d required columns", filepath.Base(path), len(intake.RequiredColumns))))
	return nil
}

func newTemplateCommand(a *app) *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty upload template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Export.Format
			}
			return runTemplate(cmd.OutOrStdout(), intake.Format(strings.ToLower(format)), outPath)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx (default from config)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default checks_template.<format>)")

	return cmd
}

func runTemplate(out io.Writer, format intake.Format, path string) error {
	var buf bytes.Buffer
	if err := export.WriteTemplate(&buf, format); err != nil {
		return err
	}
	if path == "" {
		path = "checks_template." + string(format)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}
