package intake

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func xlsxBytes(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestCheck_CSVComplete(t *testing.T) {
	res, err := CheckFile("../../testdata/checks_upload.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, res.Format)
	assert.True(t, res.OK())
	assert.Len(t, res.Headers, 12)
	assert.NoError(t, res.Err())
}

func TestCheck_MissingPayer(t *testing.T) {
	res, err := CheckFile("../../testdata/checks_missing_payer.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"Payer"}, res.Missing)

	var mce *MissingColumnsError
	require.ErrorAs(t, res.Err(), &mce)
	assert.Equal(t, "missing required columns: Payer", mce.Error())
}

func TestCheck_CaseAndSpaceInsensitive(t *testing.T) {
	csv := " check number ,DATE OF DEPOSIT,Check  Amount,payer,Location,practice\n"
	res, err := Check(strings.NewReader(csv), "x.csv", RequiredColumns)
	require.NoError(t, err)
	// Inner whitespace is significant; only the ends are trimmed.
	assert.Equal(t, []string{"Check Amount"}, res.Missing)
}

func TestCheck_BOMAndQuotes(t *testing.T) {
	csv := "\ufeff\"Check Number\",'Date of Deposit',Check Amount,Payer,Location,Practice\n"
	res, err := Check(strings.NewReader(csv), "bom.csv", RequiredColumns)
	require.NoError(t, err)
	assert.True(t, res.OK(), "missing: %v", res.Missing)
	assert.Equal(t, "Check Number", res.Headers[0])
}

func TestCheck_EmptyFileAllMissing(t *testing.T) {
	res, err := Check(strings.NewReader(""), "empty.csv", RequiredColumns)
	require.NoError(t, err)
	assert.Equal(t, RequiredColumns, res.Missing)
	assert.Empty(t, res.Headers)
}

func TestCheck_XLSX(t *testing.T) {
	data := xlsxBytes(t,
		[]any{"Check Number", "Date of Deposit", "Check Amount", "Payer", "Location"},
		[]any{"1001", "01/02/2025", 10.5, "Aetna", "Main"},
	)
	res, err := CheckBytes(data, "upload.xlsx", RequiredColumns)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, res.Format)
	assert.Equal(t, []string{"Practice"}, res.Missing)
}

func TestCheck_XLSXNoRows(t *testing.T) {
	data := xlsxBytes(t)
	res, err := CheckBytes(data, "blank.xlsx", RequiredColumns)
	require.NoError(t, err)
	assert.Equal(t, RequiredColumns, res.Missing)
}

func TestCheck_Unsupported(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	_, err := CheckBytes(pdf, "scan.pdf", RequiredColumns)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCheckFile_NotFound(t *testing.T) {
	_, err := CheckFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadTable_CSV(t *testing.T) {
	data, err := os.ReadFile("../../testdata/checks_upload.csv")
	require.NoError(t, err)
	rows, format, err := ReadTable(data, "checks_upload.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)
	require.Len(t, rows, 5)
	assert.Equal(t, "100231", rows[1][0])
}

func TestReadTable_XLSX(t *testing.T) {
	data := xlsxBytes(t,
		[]any{"Check Number", "Payer"},
		[]any{"1001", "Aetna"},
		[]any{"1002", "Cigna"},
	)
	rows, format, err := ReadTable(data, "book.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)
	assert.Equal(t, [][]string{{"Check Number", "Payer"}, {"1001", "Aetna"}, {"1002", "Cigna"}}, rows)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get(FormatCSV))
	r.Register(&CSVReader{})
	assert.NotNil(t, r.Get("CSV"))
	assert.Panics(t, func() { r.Register(&CSVReader{}) })
}

func TestMissingColumns_Order(t *testing.T) {
	missing := MissingColumns([]string{"Practice"}, RequiredColumns)
	assert.Equal(t, []string{"Check Number", "Date of Deposit", "Check Amount", "Payer", "Location"}, missing)
}
