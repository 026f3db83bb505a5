// Package activity keeps an append-only CSV record of staging workflow
// outcomes on the operator's machine.
package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Outcome values written to the log.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp time.Time
	Action    string // upload, save, revalidate, promote, delete, export
	JobID     string
	RowCount  int
	Outcome   string
	Details   string
}

// Header is the CSV header for the activity log.
const Header = "timestamp,action,job_id,row_count,outcome,details"

const (
	numFields   = 6
	colTime     = 0
	colAction   = 1
	colJobID    = 2
	colRowCount = 3
	colOutcome  = 4
	colDetails  = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colAction] = e.Action
	row[colJobID] = e.JobID
	row[colRowCount] = strconv.Itoa(e.RowCount)
	row[colOutcome] = e.Outcome
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}
	n, err := strconv.Atoi(record[colRowCount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing row count %q: %w", record[colRowCount], err)
	}
	return Entry{
		Timestamp: ts,
		Action:    record[colAction],
		JobID:     record[colJobID],
		RowCount:  n,
		Outcome:   record[colOutcome],
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to path, creating the file and header if needed.
func Append(path string, entries []Entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating activity log dir: %w", err)
		}
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries in path. A missing file yields no entries.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Recorder receives workflow outcomes.
type Recorder interface {
	Record(e Entry) error
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(Entry) error { return nil }

// FileRecorder appends entries to a CSV file. Safe for concurrent use.
type FileRecorder struct {
	mu   sync.Mutex
	path string
}

// NewFileRecorder returns a recorder that appends to path.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

// Record appends e to the log.
func (r *FileRecorder) Record(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Append(r.path, []Entry{e})
}
