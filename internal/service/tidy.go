package service

import (
	"context"

	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/progress"
)

// tidyPropertyKeys are the shared property keys this tool (and its earlier
// revisions) writes. Tidy removes all of them.
var tidyPropertyKeys = []string{
	domain.PropKeyOriginalID,
	domain.PropKeyCopyID,
	"CustomOriginalFileId",
	"CustomCopyFileId",
	"CustomPreviousAccountId",
	"CustomNewAccountId",
}

// Tidy walks the account's tree and removes the pairing properties from
// every entry carrying them. Run this after a migration is complete and
// the pairing links are no longer needed.
func (r *Runner) Tidy(ctx context.Context) (string, error) {
	return r.runAction(ctx, "tidy", r.tidy)
}

func (r *Runner) tidy(ctx context.Context, tracker *progress.Tracker) (string, error) {
	account := r.cfg.Account

	r.log.Info("tidying properties",
		"account_type", account.Type, "account_id", account.AccountID,
		"top_folder_id", account.TopFolderID)

	err := r.walk(ctx, func(entryPath []domain.Entry) error {
		tracker.AddEntry()

		entry := entryPath[len(entryPath)-1]

		removals := make(map[string]string)
		for _, key := range tidyPropertyKeys {
			if entry.Property(key) != "" {
				removals[key] = ""
			}
		}
		if len(removals) == 0 {
			return nil
		}

		updated, err := r.gw.UpdateProperties(ctx, entry.ID, removals)
		if err != nil {
			return err
		}

		tracker.AddSucceeded()
		r.log.Info("removed properties",
			"entry", entry.String(), "remaining", len(updated.Properties))
		return nil
	})
	if err != nil {
		return "", err
	}

	snapshot := tracker.Snapshot()
	r.log.Info("tidying finished",
		"entries", snapshot.Entries, "updated", snapshot.Succeeded)
	return "", nil
}
