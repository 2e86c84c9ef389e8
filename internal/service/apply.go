package service

import (
	"context"
	"fmt"

	"github.com/Ning0612/Drivemover/internal/core/executor"
	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/progress"
	"github.com/Ning0612/Drivemover/internal/report"
)

// Apply reads a previously written plan file and applies its items
// strictly in file order, writing an outcome row per item. Every item
// re-validates live remote state, so re-applying a finished plan only
// produces skipped outcomes. Returns the outcomes report path.
func (r *Runner) Apply(ctx context.Context, planPath string) (string, error) {
	return r.runAction(ctx, "apply", func(ctx context.Context, tracker *progress.Tracker) (string, error) {
		return r.apply(ctx, tracker, planPath)
	})
}

func (r *Runner) apply(ctx context.Context, tracker *progress.Tracker, planPath string) (string, error) {
	account := r.cfg.Account

	r.log.Info("applying modifications",
		"account_type", account.Type, "account_id", account.AccountID,
		"plan", planPath)

	items, err := report.ReadPlans(planPath)
	if err != nil {
		return "", err
	}

	for _, item := range items {
		if item.AccountID != account.AccountID {
			return "", fmt.Errorf(
				"%w: plan was built for account '%s', config names account '%s'",
				domain.ErrConfigInvalid, item.AccountID, account.AccountID)
		}
	}

	outcomes, err := report.NewOutcomeWriter(r.cfg.Reports.OutcomesDir, r.now())
	if err != nil {
		return "", err
	}
	defer outcomes.Close()

	r.log.Info("writing outcomes report", "path", outcomes.Path())

	exec := executor.New(r.gw, r.pairs, account, r.cfg.Actions, r.log)

	for index, item := range items {
		if err := ctx.Err(); err != nil {
			return outcomes.Path(), err
		}

		r.log.Info("applying plan item",
			"index", index+1, "total", len(items), "item", item.String())

		outcome, err := exec.Apply(ctx, item)
		if err != nil {
			return outcomes.Path(), fmt.Errorf("plan item %d: %w", index+1, err)
		}

		switch outcome.Result {
		case domain.ResultSuccess:
			tracker.AddSucceeded()
		case domain.ResultSkipped:
			tracker.AddSkipped()
		case domain.ResultFailed:
			tracker.AddFailed()
			r.log.Warn("plan item failed",
				"item", item.String(), "reason", outcome.ResultDescription)
		}

		if err := outcomes.Write(outcome); err != nil {
			return outcomes.Path(), err
		}
	}

	snapshot := tracker.Snapshot()
	r.log.Info("applying finished",
		"succeeded", snapshot.Succeeded, "skipped", snapshot.Skipped,
		"failed", snapshot.Failed, "path", outcomes.Path())
	return outcomes.Path(), nil
}
