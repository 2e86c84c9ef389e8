package report

import (
	"time"

	"github.com/Ning0612/Drivemover/internal/domain"
)

var permissionFields = []string{
	"entry_name", "entry_path", "entry_type",
	"account_type", "drive_id", "account_id",
	"link", "entry_id",
	"user_name", "user_email", "user_access",
	"permission_id",
}

// PermissionWriter writes the permissions report, one row per permission
// per visited entry
type PermissionWriter struct {
	file    *csvFile
	account domain.Account
}

// NewPermissionWriter creates a timestamped permissions report in dir
func NewPermissionWriter(dir string, account domain.Account, now time.Time) (*PermissionWriter, error) {
	file, err := newCSVFile(dir, "permissions", now, permissionFields)
	if err != nil {
		return nil, err
	}
	return &PermissionWriter{file: file, account: account}, nil
}

// Write records all permissions on the last entry in the ancestor chain
func (w *PermissionWriter) Write(entryPath []domain.Entry) error {
	entry := entryPath[len(entryPath)-1]
	parentPath := domain.PathString(entryPath[:len(entryPath)-1])

	for _, permission := range entry.Permissions {
		err := w.file.write([]string{
			entry.Name,
			parentPath,
			entry.EntryType(),
			string(w.account.Type),
			w.account.DriveID,
			w.account.AccountID,
			entry.ViewLink,
			entry.ID,
			permission.DisplayName,
			permission.UserEmail,
			string(permission.Role),
			permission.ID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Path returns the report file path
func (w *PermissionWriter) Path() string {
	return w.file.Path()
}

// Close flushes and closes the report
func (w *PermissionWriter) Close() error {
	return w.file.Close()
}
