// Package service ties the gateway, planner, executor, and reports
// together into the runnable actions: show, plan, apply, and tidy.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ning0612/Drivemover/internal/config"
	"github.com/Ning0612/Drivemover/internal/core/cache"
	"github.com/Ning0612/Drivemover/internal/core/pairing"
	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/gateway"
	"github.com/Ning0612/Drivemover/internal/lock"
	"github.com/Ning0612/Drivemover/internal/logger"
	"github.com/Ning0612/Drivemover/internal/progress"
	"github.com/Ning0612/Drivemover/internal/state"
)

// Runner executes one action at a time against a single account. A file
// lock guards against concurrent runs; run outcomes are recorded in the
// state manager when one is provided.
type Runner struct {
	cfg      *config.Config
	gw       gateway.Gateway
	pairs    pairing.Finder
	states   *state.Manager
	locks    *lock.FileLock
	log      logger.Logger
	now      func() time.Time
	progress progress.Callback
}

// NewRunner creates a runner. states may be nil to skip run history;
// locks may be nil to skip the single-run guard (tests only).
func NewRunner(cfg *config.Config, gw gateway.Gateway, states *state.Manager, locks *lock.FileLock, log logger.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		gw:     gw,
		pairs:  pairing.NewResolver(gw, cfg.Account),
		states: states,
		locks:  locks,
		log:    log,
		now:    time.Now,
	}
}

// SetProgressCallback registers a callback for run counter updates
func (r *Runner) SetProgressCallback(callback progress.Callback) {
	r.progress = callback
}

// runAction wraps an action with the lock, counters, and run history
func (r *Runner) runAction(ctx context.Context, action string, fn func(ctx context.Context, tracker *progress.Tracker) (string, error)) (string, error) {
	if r.locks != nil {
		if err := r.locks.Acquire(action); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrRunInProgress, err)
		}
		defer func() {
			if err := r.locks.Release(); err != nil {
				r.log.Warn("failed to release lock", "error", err)
			}
		}()
	}

	startTime := r.now()
	tracker := progress.NewTracker(r.progress)

	reportPath, err := fn(ctx, tracker)

	status := state.StatusSuccess
	errText := ""
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		status = state.StatusCancelled
		errText = err.Error()
	case err != nil:
		status = state.StatusFailed
		errText = err.Error()
	}

	if r.states != nil {
		snapshot := tracker.Snapshot()
		record := state.RunRecord{
			RunID:        state.NewRunID(),
			Action:       action,
			AccountID:    r.cfg.Account.AccountID,
			StartTime:    startTime,
			EndTime:      r.now(),
			Status:       status,
			EntryCount:   snapshot.Entries,
			PlanCount:    snapshot.Plans,
			SuccessCount: snapshot.Succeeded,
			SkipCount:    snapshot.Skipped,
			FailCount:    snapshot.Failed,
			ReportPath:   reportPath,
			Error:        errText,
		}
		if saveErr := r.states.SaveRun(record); saveErr != nil {
			r.log.Warn("failed to save run record", "error", saveErr)
		}
	}

	return reportPath, err
}

// walk visits the top folder and all its descendants depth-first, parents
// before children, calling visit with each entry's full ancestor chain.
// Cancellation is checked between entries, never mid-entry.
func (r *Runner) walk(ctx context.Context, visit func(entryPath []domain.Entry) error) error {
	topFolderID := r.cfg.Account.TopFolderID

	top, err := r.gw.GetEntry(ctx, topFolderID)
	if err != nil {
		return fmt.Errorf("failed to fetch top folder '%s': %w", topFolderID, err)
	}
	if !top.IsFolder() {
		return fmt.Errorf("%w: top entry '%s' is not a folder", domain.ErrConfigInvalid, topFolderID)
	}

	entries := cache.New(top.ID)
	entries.Add(top)

	entryPath, err := entries.Path(top.ID)
	if err != nil {
		return err
	}
	if err := visit(entryPath); err != nil {
		return err
	}

	return r.walkChildren(ctx, entries, top.ID, visit)
}

func (r *Runner) walkChildren(ctx context.Context, entries *cache.EntryPathCache, folderID string, visit func(entryPath []domain.Entry) error) error {
	children, err := r.gw.ListChildren(ctx, folderID)
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries.Add(child)

		entryPath, err := entries.Path(child.ID)
		if err != nil {
			return err
		}
		if err := visit(entryPath); err != nil {
			return err
		}

		if child.IsFolder() {
			if err := r.walkChildren(ctx, entries, child.ID, visit); err != nil {
				return err
			}
		}
	}
	return nil
}
