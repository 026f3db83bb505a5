package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ebotics/recon/internal/intake"
	"github.com/ebotics/recon/internal/model"
)

func invalidRow() model.StagedRow {
	return model.StagedRow{
		StagingCheckID:   "r1",
		RowStatus:        model.RowInvalid,
		SheetRowNumber:   4,
		CheckNumber:      "10042",
		DateOfDeposit:    "13/45/2025",
		CheckAmount:      decimal.RequireFromString("250.10"),
		Payer:            "Aetna",
		Location:         "Main St",
		Practice:         "Dental",
		AssigneeID:       12,
		ValidationErrors: []string{"Invalid date of deposit", "Duplicate check number"},
	}
}

func TestHeader(t *testing.T) {
	assert.Equal(t, []string{
		"Row #", "Check Number", "Date of Deposit", "Check Amount", "Payer", "Location",
		"Practice", "Type", "Exchange Description", "Bank Statement TRN Details", "Comments",
		"Assignee ID", "Reporter ID", "Error",
	}, Header())
	assert.Len(t, TemplateHeader(), len(model.Fields))
}

func TestRecord(t *testing.T) {
	rec := Record(invalidRow())
	require.Len(t, rec, len(Header()))
	assert.Equal(t, "4", rec[0])
	assert.Equal(t, "250.1", rec[3])
	assert.Equal(t, "12", rec[11])
	assert.Equal(t, "", rec[12])
	assert.Equal(t, "Invalid date of deposit; Duplicate check number", rec[13])
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 7, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "March Deposits_2025-07-09.csv", FileName("March Deposits", now, intake.FormatCSV))
	assert.Equal(t, "InvalidChecks_2025-07-09.xlsx", FileName("  ", now, intake.FormatXLSX))
	assert.Equal(t, "a_b_2025-07-09.csv", FileName("a/b", now, intake.FormatCSV))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []model.StagedRow{invalidRow()}, intake.FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Header(), records[0])
	assert.Equal(t, "10042", records[1][1])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []model.StagedRow{invalidRow()}, intake.FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetName, f.GetSheetName(0))
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Row #", rows[0][0])
	assert.Equal(t, "Aetna", rows[1][4])
}

func TestWriteTemplateReadsBackAsValidUpload(t *testing.T) {
	for _, format := range []intake.Format{intake.FormatCSV, intake.FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTemplate(&buf, format))

			res, err := intake.CheckBytes(buf.Bytes(), "template."+string(format), intake.RequiredColumns)
			require.NoError(t, err)
			assert.True(t, res.OK())
			assert.Equal(t, format, res.Format)
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	path, err := WriteFile(dir, "", now, intake.FormatCSV, []model.StagedRow{invalidRow()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "InvalidChecks_2025-01-02.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Duplicate check number")
}

func TestWriteUnsupported(t *testing.T) {
	err := Write(&bytes.Buffer{}, nil, intake.Format("pdf"))
	require.ErrorIs(t, err, intake.ErrUnsupportedFormat)
}

func TestWriteFile_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := WriteFile(dir, "February", now, intake.Format("pdf"), []model.StagedRow{invalidRow()})
	require.ErrorIs(t, err, intake.ErrUnsupportedFormat)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
