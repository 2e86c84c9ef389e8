// Package report writes and reads the CSV report files: entries,
// permissions, plans, and outcomes. The plan file is the durable contract
// between planning and applying, so plan rows must round-trip without loss.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout names report files so they sort chronologically
const timestampLayout = "2006-01-02-15-04-05"

// csvFile is a CSV report file with a header row
type csvFile struct {
	path   string
	handle *os.File
	writer *csv.Writer
}

// newCSVFile creates a timestamped CSV file in dir and writes the header
func newCSVFile(dir, name string, now time.Time, fields []string) (*csvFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	fileName := fmt.Sprintf("%s-%s.csv", now.Format(timestampLayout), name)
	path := filepath.Join(dir, fileName)

	handle, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	writer := csv.NewWriter(handle)
	if err := writer.Write(fields); err != nil {
		handle.Close()
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	return &csvFile{path: path, handle: handle, writer: writer}, nil
}

func (f *csvFile) write(record []string) error {
	return f.writer.Write(record)
}

// Path returns the report file path
func (f *csvFile) Path() string {
	return f.path
}

// Close flushes and closes the report file
func (f *csvFile) Close() error {
	f.writer.Flush()
	flushErr := f.writer.Error()
	closeErr := f.handle.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// readRows reads a CSV file and returns its rows as maps keyed by the
// header fields
func readRows(path string) ([]map[string]string, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer handle.Close()

	reader := csv.NewReader(handle)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read report file '%s': %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("report file '%s' has no header", path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, field := range header {
			if i < len(record) {
				row[field] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
