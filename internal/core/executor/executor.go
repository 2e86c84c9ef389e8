// Package executor applies plan items against the remote store. Every
// branch re-validates live remote state rather than trusting the plan
// snapshot, so a partially-applied plan can be re-run safely.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ning0612/Drivemover/internal/core/pairing"
	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/gateway"
	"github.com/Ning0612/Drivemover/internal/logger"
)

// Executor applies one plan item at a time. Business outcomes (skipped,
// failed) are reported through the outcome item; an error return means a
// structural or config problem that must abort the run.
type Executor struct {
	gw      gateway.Gateway
	pairs   pairing.Finder
	account domain.Account
	actions domain.Actions
	log     logger.Logger
}

// New creates an executor
func New(gw gateway.Gateway, pairs pairing.Finder, account domain.Account, actions domain.Actions, log logger.Logger) *Executor {
	return &Executor{
		gw:      gw,
		pairs:   pairs,
		account: account,
		actions: actions,
		log:     log,
	}
}

// Apply applies a single plan item and classifies the result
func (e *Executor) Apply(ctx context.Context, item domain.PlanItem) (domain.OutcomeItem, error) {
	switch item.Action {
	case domain.ActionCreateFolder:
		return e.applyCreateFolder(ctx, item)
	case domain.ActionCopyFile:
		return e.applyCopyFile(ctx, item)
	case domain.ActionRenameFile:
		return e.applyRename(ctx, item)
	case domain.ActionDeletePermission:
		return e.applyDeletePermission(ctx, item)
	case domain.ActionMoveEntry:
		return e.applyMoveEntry(ctx, item)
	}
	return domain.OutcomeItem{}, fmt.Errorf("%w: '%s'", domain.ErrUnknownAction, item.Action)
}

func skipped(item domain.PlanItem, description string) domain.OutcomeItem {
	return domain.NewOutcome(item, domain.ResultSkipped, description)
}

func failed(item domain.PlanItem, description string) domain.OutcomeItem {
	return domain.NewOutcome(item, domain.ResultFailed, description)
}

func succeeded(item domain.PlanItem, description string) domain.OutcomeItem {
	return domain.NewOutcome(item, domain.ResultSuccess, description)
}

// fetch loads the current remote entry; a missing entry is a failed
// outcome, not an abort
func (e *Executor) fetch(ctx context.Context, item domain.PlanItem, id string) (domain.Entry, *domain.OutcomeItem, error) {
	entry, err := e.gw.GetEntry(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		outcome := failed(item, fmt.Sprintf("entry '%s' does not exist", id))
		return domain.Entry{}, &outcome, nil
	}
	if err != nil {
		return domain.Entry{}, nil, err
	}
	return entry, nil, nil
}

func (e *Executor) applyCreateFolder(ctx context.Context, item domain.PlanItem) (domain.OutcomeItem, error) {
	if !e.actions.CreateOwnedFolderAndMoveContents {
		return skipped(item, "config prevented creating an owned folder"), nil
	}

	entry, outcome, err := e.fetch(ctx, item, item.EntryID)
	if err != nil || outcome != nil {
		return deref(outcome), err
	}

	pair, err := e.pairs.FindPair(ctx, entry)
	if err != nil {
		return domain.OutcomeItem{}, err
	}
	if pair != nil {
		return skipped(item, "folder copy already exists"), nil
	}

	created, err := e.gw.CreateFolder(ctx, entry, entry.ParentID)
	if err != nil {
		return domain.OutcomeItem{}, err
	}
	if err := e.recordCopy(ctx, entry.ID, created.ID); err != nil {
		return domain.OutcomeItem{}, err
	}

	e.log.Info("created owned folder", "name", entry.Name, "id", created.ID)
	return succeeded(item, fmt.Sprintf("created folder '%s'", created.ID)), nil
}

func (e *Executor) applyCopyFile(ctx context.Context, item domain.PlanItem) (domain.OutcomeItem, error) {
	if !e.actions.CreateOwnedFileCopy {
		return skipped(item, "config prevented copying file"), nil
	}

	entry, outcome, err := e.fetch(ctx, item, item.EntryID)
	if err != nil || outcome != nil {
		return deref(outcome), err
	}

	pair, err := e.pairs.FindPair(ctx, entry)
	if err != nil {
		return domain.OutcomeItem{}, err
	}
	if pair != nil {
		return skipped(item, "file copy already exists"), nil
	}

	copied, err := e.gw.CopyFile(ctx, entry, entry.ParentID)
	if err != nil {
		return domain.OutcomeItem{}, err
	}
	if err := e.recordCopy(ctx, entry.ID, copied.ID); err != nil {
		return domain.OutcomeItem{}, err
	}

	e.log.Info("copied file", "name", entry.Name, "id", copied.ID)
	return succeeded(item, fmt.Sprintf("copied file to '%s'", copied.ID)), nil
}

// recordCopy stores the copy's id on the original, completing the
// bidirectional pairing link
func (e *Executor) recordCopy(ctx context.Context, originalID, copyID string) error {
	_, err := e.gw.UpdateProperties(ctx, originalID, map[string]string{
		domain.PropKeyCopyID: copyID,
	})
	return err
}

func (e *Executor) applyRename(ctx context.Context, item domain.PlanItem) (domain.OutcomeItem, error) {
	if !e.actions.EntryNameDeletePrefixCopyOf {
		return skipped(item, "config prevented renaming"), nil
	}

	entry, outcome, err := e.fetch(ctx, item, item.EntryID)
	if err != nil || outcome != nil {
		return deref(outcome), err
	}

	newName := item.End.EntryName
	if entry.Name == newName {
		return skipped(item, "name is already as expected"), nil
	}

	if _, err := e.gw.RenameEntry(ctx, entry.ID, newName); err != nil {
		return domain.OutcomeItem{}, err
	}

	e.log.Info("renamed file", "from", entry.Name, "to", newName)
	return succeeded(item, fmt.Sprintf("renamed to '%s'", newName)), nil
}

func (e *Executor) applyDeletePermission(ctx context.Context, item domain.PlanItem) (domain.OutcomeItem, error) {
	entry, outcome, err := e.fetch(ctx, item, item.EntryID)
	if err != nil || outcome != nil {
		return deref(outcome), err
	}

	permission, ok := entry.PermissionByID(item.PermissionID)
	if !ok {
		return skipped(item, "permission does not exist"), nil
	}

	if permission.Role == domain.RoleOwner {
		return domain.OutcomeItem{}, fmt.Errorf(
			"%w: plan item asks to delete an owner permission on %s",
			domain.ErrIntegrity, entry)
	}

	if permission.Type == domain.PermissionAnyone {
		if !e.actions.PermissionsDeleteLink {
			return skipped(item, "config prevented deleting link permission"), nil
		}
	} else {
		if !e.actions.PermissionsDeleteOtherUsers {
			return skipped(item, "config prevented deleting permission"), nil
		}
	}

	// the permission's email may be recorded on either side of the plan
	// item depending on the change direction
	if e.actions.KeepEmail(item.Begin.UserEmail) || e.actions.KeepEmail(item.End.UserEmail) ||
		e.actions.KeepEmail(permission.UserEmail) {
		return skipped(item, "config prevented deleting permission for kept email"), nil
	}

	if err := e.gw.DeletePermission(ctx, entry.ID, permission.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return skipped(item, "permission does not exist"), nil
		}
		return domain.OutcomeItem{}, err
	}

	e.log.Info("deleted permission",
		"entry", entry.Name, "permission", permission.String())
	return succeeded(item, fmt.Sprintf("deleted permission '%s'", permission.ID)), nil
}

// applyMoveEntry moves the entry (or its owned copy) out of an unowned
// folder into the owned replacement folder. The plan item identifies the
// unowned entry; the thing actually moved may be its pair.
func (e *Executor) applyMoveEntry(ctx context.Context, item domain.PlanItem) (domain.OutcomeItem, error) {
	if !e.actions.CreateOwnedFolderAndMoveContents {
		return skipped(item, "config prevented moving entries"), nil
	}

	entry, outcome, err := e.fetch(ctx, item, item.EntryID)
	if err != nil || outcome != nil {
		return deref(outcome), err
	}

	parent, outcome, err := e.fetch(ctx, item, entry.ParentID)
	if err != nil || outcome != nil {
		return deref(outcome), err
	}

	parentOwned, err := parent.IsOwnedBy(e.account.AccountID)
	if err != nil {
		return domain.OutcomeItem{}, err
	}
	if parentOwned {
		return skipped(item, "entry is already in an owned folder"), nil
	}

	target, err := e.pairs.FindPair(ctx, parent)
	if err != nil {
		return domain.OutcomeItem{}, err
	}
	if target == nil {
		return failed(item, fmt.Sprintf(
			"could not find owned folder to move into for parent '%s'; check plan ordering",
			parent.Name)), nil
	}
	if !target.IsFolder() {
		return failed(item, fmt.Sprintf(
			"pair of parent '%s' is not a folder", parent.Name)), nil
	}

	toMove := entry
	entryOwned, err := entry.IsOwnedBy(e.account.AccountID)
	if err != nil {
		return domain.OutcomeItem{}, err
	}
	if !entryOwned {
		pair, err := e.pairs.FindPair(ctx, entry)
		if err != nil {
			return domain.OutcomeItem{}, err
		}
		if pair == nil {
			return failed(item, fmt.Sprintf(
				"could not find owned copy of '%s' to move; check plan ordering",
				entry.Name)), nil
		}
		toMove = *pair
	}

	if toMove.ParentID == target.ID {
		return skipped(item, "entry is already in the owned folder"), nil
	}

	if _, err := e.gw.MoveEntry(ctx, toMove.ID, target.ID); err != nil {
		return domain.OutcomeItem{}, err
	}

	e.log.Info("moved entry",
		"name", toMove.Name, "from", toMove.ParentID, "to", target.ID)
	return succeeded(item, fmt.Sprintf("moved into folder '%s'", target.ID)), nil
}

func deref(outcome *domain.OutcomeItem) domain.OutcomeItem {
	if outcome == nil {
		return domain.OutcomeItem{}
	}
	return *outcome
}
