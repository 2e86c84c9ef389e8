package report

import (
	"strconv"
	"time"

	"github.com/Ning0612/Drivemover/internal/domain"
)

var entryFields = []string{
	"entry_name", "entry_path", "entry_type",
	"account_type", "drive_id", "account_id",
	"link", "entry_id",
	"checksum", "quota_bytes", "size_bytes",
}

// EntryWriter writes the entries report, one row per visited entry
type EntryWriter struct {
	file    *csvFile
	account domain.Account
}

// NewEntryWriter creates a timestamped entries report in dir
func NewEntryWriter(dir string, account domain.Account, now time.Time) (*EntryWriter, error) {
	file, err := newCSVFile(dir, "entries", now, entryFields)
	if err != nil {
		return nil, err
	}
	return &EntryWriter{file: file, account: account}, nil
}

// Write records one entry with its ancestor chain in root-to-entry order
func (w *EntryWriter) Write(entryPath []domain.Entry) error {
	entry := entryPath[len(entryPath)-1]
	parentPath := domain.PathString(entryPath[:len(entryPath)-1])

	return w.file.write([]string{
		entry.Name,
		parentPath,
		entry.EntryType(),
		string(w.account.Type),
		w.account.DriveID,
		w.account.AccountID,
		entry.ViewLink,
		entry.ID,
		entry.Checksum,
		strconv.FormatInt(entry.QuotaBytes, 10),
		strconv.FormatInt(entry.SizeBytes, 10),
	})
}

// Path returns the report file path
func (w *EntryWriter) Path() string {
	return w.file.Path()
}

// Close flushes and closes the report
func (w *EntryWriter) Close() error {
	return w.file.Close()
}
