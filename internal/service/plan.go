package service

import (
	"context"

	"github.com/Ning0612/Drivemover/internal/core/planner"
	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/progress"
	"github.com/Ning0612/Drivemover/internal/report"
)

// Plan walks the account's tree, writes the entries and permissions
// reports, and builds the plan of intended changes. Planning is read-only.
// Returns the plans report path for a later Apply.
func (r *Runner) Plan(ctx context.Context) (string, error) {
	return r.runAction(ctx, "plan", r.plan)
}

func (r *Runner) plan(ctx context.Context, tracker *progress.Tracker) (string, error) {
	account := r.cfg.Account
	now := r.now()

	r.log.Info("planning modifications",
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

	plans, err := report.NewPlanWriter(r.cfg.Reports.PlansDir, now)
	if err != nil {
		return "", err
	}
	defer plans.Close()

	r.log.Info("writing entries report", "path", entries.Path())
	r.log.Info("writing permissions report", "path", permissions.Path())
	r.log.Info("writing plans report", "path", plans.Path())

	builder := planner.New(r.gw, r.pairs, account, r.cfg.Actions, r.log)

	err = r.walk(ctx, func(entryPath []domain.Entry) error {
		tracker.AddEntry()
		if err := entries.Write(entryPath); err != nil {
			return err
		}
		if err := permissions.Write(entryPath); err != nil {
			return err
		}

		items, err := builder.BuildPlans(ctx, entryPath)
		if err != nil {
			return err
		}
		for _, item := range items {
			r.log.Info("added plan", "item", item.String())
			if err := plans.Write(item); err != nil {
				return err
			}
		}
		tracker.AddPlans(len(items))
		return nil
	})
	if err != nil {
		return plans.Path(), err
	}

	snapshot := tracker.Snapshot()
	r.log.Info("planning finished",
		"entries", snapshot.Entries, "plans", snapshot.Plans,
		"path", plans.Path())
	return plans.Path(), nil
}
