// Package intake checks a selected spreadsheet for the upload template's
// required columns before anything is sent to the staging service.
package intake

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// RequiredColumns are the template columns every upload must carry.
var RequiredColumns = []string{
	"Check Number",
	"Date of Deposit",
	"Check Amount",
	"Payer",
	"Location",
	"Practice",
}

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format: expected .csv or .xlsx")

// Result is the outcome of a header check.
type Result struct {
	Format  Format
	Headers []string // raw header cells as read
	Missing []string // required names not found, in RequiredColumns order
}

// OK reports whether every required column was found.
func (r Result) OK() bool {
	return len(r.Missing) == 0
}

// Err returns a *MissingColumnsError when columns are missing, else nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &MissingColumnsError{Missing: r.Missing}
}

// MissingColumnsError blocks an upload locally. Missing is reported verbatim.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// Check reads the header row of the named file content and compares it with
// required using case-insensitive, trimmed matching.
func Check(r io.Reader, name string, required []string) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return CheckBytes(data, name, required)
}

// CheckBytes is Check over an in-memory file.
func CheckBytes(data []byte, name string, required []string) (Result, error) {
	reader, err := DefaultRegistry().Detect(name, data)
	if err != nil {
		return Result{}, err
	}

	headers, err := reader.ReadHeader(data)
	if err != nil {
		return Result{}, fmt.Errorf("reading header of %s: %w", name, err)
	}

	return Result{
		Format:  reader.Format(),
		Headers: headers,
		Missing: MissingColumns(headers, required),
	}, nil
}

// CheckFile runs Check against a file on disk with RequiredColumns.
func CheckFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return Check(f, filepath.Base(path), RequiredColumns)
}

// MissingColumns returns the required names absent from headers.
func MissingColumns(headers, required []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[NormalizeHeader(h)] = true
	}

	var missing []string
	for _, col := range required {
		if !present[NormalizeHeader(col)] {
			missing = append(missing, col)
		}
	}
	return missing
}

// NormalizeHeader lowercases and trims a header cell for comparison.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// ReadTable detects the format of data and returns all of its rows.
func ReadTable(data []byte, name string) ([][]string, Format, error) {
	tr, err := DefaultRegistry().Detect(name, data)
	if err != nil {
		return nil, "", err
	}
	rows, err := tr.ReadTable(data)
	if err != nil {
		return nil, "", err
	}
	return rows, tr.Format(), nil
}
