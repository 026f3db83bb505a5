// Package export writes invalid staged rows and the blank upload template
// as CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ebotics/recon/internal/intake"
	"github.com/ebotics/recon/internal/model"
)

// SheetName is the worksheet name used for XLSX exports.
const SheetName = "Invalid Rows"

// DefaultBaseName is used when the job has no name.
const DefaultBaseName = "InvalidChecks"

// ErrorSeparator joins a row's validation errors in the Error column.
const ErrorSeparator = "; "

// Header returns the invalid-row export header.
func Header() []string {
	h := make([]string, 0, len(model.Fields)+2)
	h = append(h, "Row #")
	h = append(h, TemplateHeader()...)
	return append(h, "Error")
}

// TemplateHeader returns the upload template columns.
func TemplateHeader() []string {
	h := make([]string, 0, len(model.Fields))
	for _, f := range model.Fields {
		h = append(h, f.Title())
	}
	return h
}

// Record converts a staged row to its export cells in Header order.
func Record(r model.StagedRow) []string {
	return []string{
		strconv.Itoa(r.SheetRowNumber),
		r.CheckNumber,
		r.DateOfDeposit,
		r.CheckAmount.String(),
		r.Payer,
		r.Location,
		r.Practice,
		r.Type,
		r.ExchangeDescription,
		r.BankStatementTrnDetails,
		r.Comments,
		formatID(r.AssigneeID),
		formatID(r.ReporterID),
		strings.Join(r.ValidationErrors, ErrorSeparator),
	}
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// FileName returns "{jobName or InvalidChecks}_{YYYY-MM-DD}.{ext}".
func FileName(jobName string, now time.Time, format intake.Format) string {
	base := strings.TrimSpace(jobName)
	if base == "" {
		base = DefaultBaseName
	}
	base = strings.NewReplacer("/", "_", `\`, "_", ":", "_").Replace(base)
	return fmt.Sprintf("%s_%s.%s", base, now.Format("2006-01-02"), format)
}

// Write encodes rows in the given format.
func Write(w io.Writer, rows []model.StagedRow, format intake.Format) error {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, Header())
	for _, r := range rows {
		table = append(table, Record(r))
	}
	return writeTable(w, table, format)
}

// WriteTemplate writes the blank upload template (header only).
func WriteTemplate(w io.Writer, format intake.Format) error {
	return writeTable(w, [][]string{TemplateHeader()}, format)
}

// WriteFile writes rows to dir under FileName and returns the path.
func WriteFile(dir, jobName string, now time.Time, format intake.Format, rows []model.StagedRow) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(jobName, now, format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := Write(f, rows, format); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}

func writeTable(w io.Writer, table [][]string, format intake.Format) error {
	switch format {
	case intake.FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(table); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		return nil
	case intake.FormatXLSX:
		return writeWorkbook(w, table)
	}
	return fmt.Errorf("export format %q: %w", format, intake.ErrUnsupportedFormat)
}

func writeWorkbook(w io.Writer, table [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for i, rec := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
