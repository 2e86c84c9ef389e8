package report

import (
	"fmt"
	"time"

	"github.com/Ning0612/Drivemover/internal/domain"
)

var planFields = []string{
	"item_action", "item_type", "entry_id", "permission_id", "description",
	"account_type", "drive_id", "account_id",
	"begin_user_name", "begin_user_email", "begin_user_access",
	"begin_entry_name", "begin_entry_path",
	"end_user_name", "end_user_email", "end_user_access",
	"end_entry_name", "end_entry_path",
}

func planRecord(item domain.PlanItem) []string {
	return []string{
		string(item.Action),
		item.EntryType,
		item.EntryID,
		item.PermissionID,
		item.Description,
		string(item.AccountType),
		item.DriveID,
		item.AccountID,
		item.Begin.UserName,
		item.Begin.UserEmail,
		item.Begin.UserAccess,
		item.Begin.EntryName,
		item.Begin.EntryPath,
		item.End.UserName,
		item.End.UserEmail,
		item.End.UserAccess,
		item.End.EntryName,
		item.End.EntryPath,
	}
}

func planFromRow(row map[string]string) (domain.PlanItem, error) {
	action := domain.Action(row["item_action"])
	if !action.IsValid() {
		return domain.PlanItem{}, fmt.Errorf("%w: '%s'", domain.ErrUnknownAction, row["item_action"])
	}

	return domain.PlanItem{
		Action:       action,
		EntryType:    row["item_type"],
		EntryID:      row["entry_id"],
		PermissionID: row["permission_id"],
		Description:  row["description"],
		AccountType:  domain.AccountType(row["account_type"]),
		DriveID:      row["drive_id"],
		AccountID:    row["account_id"],
		Begin: domain.StateSnapshot{
			UserName:   row["begin_user_name"],
			UserEmail:  row["begin_user_email"],
			UserAccess: row["begin_user_access"],
			EntryName:  row["begin_entry_name"],
			EntryPath:  row["begin_entry_path"],
		},
		End: domain.StateSnapshot{
			UserName:   row["end_user_name"],
			UserEmail:  row["end_user_email"],
			UserAccess: row["end_user_access"],
			EntryName:  row["end_entry_name"],
			EntryPath:  row["end_entry_path"],
		},
	}, nil
}

// PlanWriter writes the plans report, one row per plan item
type PlanWriter struct {
	file *csvFile
}

// NewPlanWriter creates a timestamped plans report in dir
func NewPlanWriter(dir string, now time.Time) (*PlanWriter, error) {
	file, err := newCSVFile(dir, "plans", now, planFields)
	if err != nil {
		return nil, err
	}
	return &PlanWriter{file: file}, nil
}

// Write records one plan item
func (w *PlanWriter) Write(item domain.PlanItem) error {
	return w.file.write(planRecord(item))
}

// Path returns the report file path
func (w *PlanWriter) Path() string {
	return w.file.Path()
}

// Close flushes and closes the report
func (w *PlanWriter) Close() error {
	return w.file.Close()
}

// ReadPlans reads a plans report back into plan items, in file order.
// Columns are matched by header name so the format tolerates reordering.
func ReadPlans(path string) ([]domain.PlanItem, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	items := make([]domain.PlanItem, 0, len(rows))
	for i, row := range rows {
		item, err := planFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("plan row %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}
