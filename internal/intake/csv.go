package intake

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVReader reads comma-separated uploads, tolerating a UTF-8 BOM.
type CSVReader struct{}

// Format returns the reader name.
func (c *CSVReader) Format() Format { return FormatCSV }

func (c *CSVReader) newReader(data []byte) *csv.Reader {
	decoded := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// ReadHeader returns the first record with quotes and spaces trimmed.
func (c *CSVReader) ReadHeader(data []byte) ([]string, error) {
	rec, err := c.newReader(data).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	return trimCells(rec), nil
}

// ReadTable returns every record.
func (c *CSVReader) ReadTable(data []byte) ([][]string, error) {
	records, err := c.newReader(data).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	for i := range records {
		records[i] = trimCells(records[i])
	}
	return records, nil
}

func trimCells(rec []string) []string {
	out := make([]string, len(rec))
	for i, cell := range rec {
		out[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(cell), `"'`))
	}
	return out
}
