package service

import (
	"context"

	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/progress"
	"github.com/Ning0612/Drivemover/internal/report"
)

// Show walks the account's tree and writes the entries and permissions
// reports without planning or changing anything. Returns the entries
// report path.
func (r *Runner) Show(ctx context.Context) (string, error) {
	return r.runAction(ctx, "show", r.show)
}

func (r *Runner) show(ctx context.Context, tracker *progress.Tracker) (string, error) {
	account := r.cfg.Account
	now := r.now()

	r.log.Info("showing entries",
		"account_type", account.Type, "account_id", account.AccountID,
		"top_folder_id", account.TopFolderID)

	entries, err := report.NewEntryWriter(r.cfg.Reports.EntriesDir, account, now)
	if err != nil {
		return "", err
	}
	defer entries.Close()

	permissions, err := report.NewPermissionWriter(r.cfg.Reports.PermissionsDir, account, now)
	if err != nil {
		return "", err
	}
	defer permissions.Close()

	r.log.Info("writing entries report", "path", entries.Path())
	r.log.Info("writing permissions report", "path", permissions.Path())

	err = r.walk(ctx, func(entryPath []domain.Entry) error {
		tracker.AddEntry()
		if err := entries.Write(entryPath); err != nil {
			return err
		}
		return permissions.Write(entryPath)
	})
	if err != nil {
		return entries.Path(), err
	}

	r.log.Info("processed entries", "count", tracker.Snapshot().Entries)
	return entries.Path(), nil
}
