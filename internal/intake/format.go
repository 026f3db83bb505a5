package intake

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format identifies a spreadsheet encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TableReader reads a spreadsheet encoding held in memory.
type TableReader interface {
	Format() Format
	// ReadHeader returns the first row, or nil for an empty file.
	ReadHeader(data []byte) ([]string, error)
	// ReadTable returns every row including the header.
	ReadTable(data []byte) ([][]string, error)
}

// Registry holds readers keyed by format.
type Registry struct {
	readers map[Format]TableReader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[Format]TableReader)}
}

// Register adds a reader. Panics on duplicate format.
func (r *Registry) Register(tr TableReader) {
	key := Format(strings.ToLower(string(tr.Format())))
	if _, ok := r.readers[key]; ok {
		panic("duplicate table reader format: " + string(key))
	}
	r.readers[key] = tr
}

// Get returns the reader for format, or nil.
func (r *Registry) Get(format Format) TableReader {
	return r.readers[Format(strings.ToLower(string(format)))]
}

// DefaultRegistry returns a registry with the CSV and XLSX readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVReader{})
	r.Register(&XLSXReader{})
	return r
}

// Detect picks a reader by sniffing content, falling back to the extension.
func (r *Registry) Detect(name string, data []byte) (TableReader, error) {
	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, err
	}
	tr := r.Get(format)
	if tr == nil {
		return nil, fmt.Errorf("%w: no reader for %s", ErrUnsupportedFormat, format)
	}
	return tr, nil
}

// DetectFormat decides whether data is CSV or XLSX.
func DetectFormat(name string, data []byte) (Format, error) {
	m := mimetype.Detect(data)
	switch {
	case m.Is(xlsxMIME):
		return FormatXLSX, nil
	case m.Is("text/csv"):
		return FormatCSV, nil
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		if len(data) == 0 || strings.HasPrefix(m.String(), "text/") {
			return FormatCSV, nil
		}
	case ".xlsx":
		if m.Is("application/zip") {
			return FormatXLSX, nil
		}
	}
	return "", fmt.Errorf("%w (%s detected as %s)", ErrUnsupportedFormat, name, m.String())
}
