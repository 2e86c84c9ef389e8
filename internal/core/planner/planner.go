// Package planner builds the list of intended changes for one account.
// Planning is read-only: the builder inspects entries and emits plan items,
// it never mutates remote state.
package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Ning0612/Drivemover/internal/core/pairing"
	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/gateway"
	"github.com/Ning0612/Drivemover/internal/logger"
)

const (
	copyOfPrefix  = "copy of "
	copyCountMark = " copy (x"
)

// Builder evaluates an entry against the configured rules and emits plan
// items. Each entry goes through four passes in a fixed order: unowned,
// move, rename, permissions. The order is load-bearing: applying depends
// on a folder's create item preceding its children's move items.
type Builder struct {
	gw      gateway.Gateway
	pairs   pairing.Finder
	account domain.Account
	actions domain.Actions
	items   itemBuilder
	log     logger.Logger
}

// New creates a plan builder
func New(gw gateway.Gateway, pairs pairing.Finder, account domain.Account, actions domain.Actions, log logger.Logger) *Builder {
	return &Builder{
		gw:      gw,
		pairs:   pairs,
		account: account,
		actions: actions,
		items:   itemBuilder{account: account},
		log:     log,
	}
}

// BuildPlans builds the plan items for one entry, given its full ancestor
// chain in root-to-entry order (the entry itself last)
func (b *Builder) BuildPlans(ctx context.Context, entryPath []domain.Entry) ([]domain.PlanItem, error) {
	if len(entryPath) == 0 {
		return nil, nil
	}

	entry := entryPath[len(entryPath)-1]
	var parent *domain.Entry
	if len(entryPath) > 1 {
		parent = &entryPath[len(entryPath)-2]
	}
	parentPath := domain.PathString(entryPath[:len(entryPath)-1])

	if !b.actions.AllowChangingTopFolder && entry.ID == b.account.TopFolderID {
		b.log.Debug("will not change the top-level folder", "name", entry.Name)
		return nil, nil
	}

	var items []domain.PlanItem

	unowned, err := b.buildUnowned(ctx, entry, parentPath)
	if err != nil {
		return nil, err
	}
	items = append(items, unowned...)

	moves, err := b.buildMove(ctx, entry, parent, parentPath)
	if err != nil {
		return nil, err
	}
	items = append(items, moves...)

	renames, err := b.buildRename(entry, parentPath)
	if err != nil {
		return nil, err
	}
	items = append(items, renames...)

	perms, err := b.buildPermissions(entry, parentPath)
	if err != nil {
		return nil, err
	}
	items = append(items, perms...)

	return items, nil
}

// buildUnowned plans owned copies of unowned files and folders
func (b *Builder) buildUnowned(ctx context.Context, entry domain.Entry, parentPath string) ([]domain.PlanItem, error) {
	if b.account.Type != domain.AccountPersonal {
		return nil, fmt.Errorf(
			"ownership fixes by copying files and folders are only implemented for "+
				"'%s' accounts, not '%s'; use the Google Drive website for other account types",
			domain.AccountPersonal, b.account.Type)
	}

	owned, err := entry.IsOwnedBy(b.account.AccountID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, nil
	}

	if entry.IsFolder() {
		if !b.actions.CreateOwnedFolderAndMoveContents {
			b.log.Debug("config prevented creating an owned folder",
				"name", entry.Name, "path", parentPath)
			return nil, nil
		}

		pair, err := b.pairs.FindPair(ctx, entry)
		if err != nil {
			return nil, err
		}
		if pair != nil {
			b.log.Info("found existing copy of folder",
				"name", entry.Name, "path", parentPath)
			return nil, nil
		}

		user, _ := entry.PermissionByEmail(b.account.AccountID)
		item, err := b.items.createFolder(entry, user, parentPath)
		if err != nil {
			return nil, err
		}
		return []domain.PlanItem{item}, nil
	}

	if !b.actions.CreateOwnedFileCopy {
		b.log.Debug("config prevented copying file",
			"name", entry.Name, "path", parentPath)
		return nil, nil
	}

	pair, err := b.pairs.FindPair(ctx, entry)
	if err != nil {
		return nil, err
	}
	if pair != nil {
		if pair.IsFolder() {
			return nil, fmt.Errorf("%w: searched for copy of %s; match was not a file: %s",
				domain.ErrIntegrity, entry, pair)
		}
		b.log.Info("found existing copy of file",
			"name", entry.Name, "path", parentPath)
		return nil, nil
	}

	user, _ := entry.PermissionByEmail(b.account.AccountID)
	item, err := b.items.copyFile(entry, user, parentPath)
	if err != nil {
		return nil, err
	}
	return []domain.PlanItem{item}, nil
}

// buildMove plans moving entries out of unowned folders into the owned
// replacement folder. The plan item carries the unowned entry's id, as the
// owned copy may not exist until the create item runs.
func (b *Builder) buildMove(ctx context.Context, entry domain.Entry, parent *domain.Entry, parentPath string) ([]domain.PlanItem, error) {
	if parent == nil {
		return nil, nil
	}

	if b.account.Type != domain.AccountPersonal {
		return nil, fmt.Errorf(
			"ownership fixes by moving files and folders are only implemented for "+
				"'%s' accounts, not '%s'; use the Google Drive website for other account types",
			domain.AccountPersonal, b.account.Type)
	}

	parentOwned, err := parent.IsOwnedBy(b.account.AccountID)
	if err != nil {
		return nil, err
	}
	if parentOwned {
		return nil, nil
	}

	entryOwned, err := entry.IsOwnedBy(b.account.AccountID)
	if err != nil {
		return nil, err
	}
	if !entryOwned {
		pair, err := b.pairs.FindPair(ctx, entry)
		if err != nil {
			return nil, err
		}
		if pair != nil {
			pairParent, err := b.gw.GetEntry(ctx, pair.ParentID)
			if err != nil {
				return nil, err
			}
			pairParentOwned, err := pairParent.IsOwnedBy(b.account.AccountID)
			if err != nil {
				return nil, err
			}
			if pairParentOwned {
				b.log.Debug("unowned entry has an owned copy that was already moved",
					"name", entry.Name, "path", parentPath)
				return nil, nil
			}
		}
	}

	if !b.actions.CreateOwnedFolderAndMoveContents {
		b.log.Debug("config prevented moving entry in unowned folder",
			"name", entry.Name, "path", parentPath)
		return nil, nil
	}

	user, _ := entry.PermissionByEmail(b.account.AccountID)
	item, err := b.items.moveEntry(entry, user, parentPath)
	if err != nil {
		return nil, err
	}
	return []domain.PlanItem{item}, nil
}

// buildRename plans stripping 'Copy of ' prefixes from owned file names
func (b *Builder) buildRename(entry domain.Entry, parentPath string) ([]domain.PlanItem, error) {
	if entry.IsFolder() {
		return nil, nil
	}

	owner, err := entry.OwnerPermission()
	if err != nil {
		return nil, err
	}
	if owner.UserEmail != b.account.AccountID {
		return nil, nil
	}

	newName, changed := cleanedCopyName(entry.Name)
	if !changed {
		return nil, nil
	}

	if !b.actions.EntryNameDeletePrefixCopyOf {
		b.log.Debug("config prevented renaming",
			"name", entry.Name, "new_name", newName)
		return nil, nil
	}

	b.log.Debug("rename planned", "name", entry.Name, "new_name", newName)
	item, err := b.items.renameFile(entry, newName, owner, parentPath)
	if err != nil {
		return nil, err
	}
	return []domain.PlanItem{item}, nil
}

// cleanedCopyName strips the leading 'Copy of ' repetitions from a file
// name and records how many were removed as a ' copy (xN)' suffix on the
// name stem, combining with any count already present. Returns the name
// unchanged when there is no prefix to strip.
func cleanedCopyName(name string) (string, bool) {
	count := 0
	rest := name
	for len(rest) >= len(copyOfPrefix) &&
		strings.EqualFold(rest[:len(copyOfPrefix)], copyOfPrefix) {
		count++
		rest = rest[len(copyOfPrefix):]
	}
	if count == 0 {
		return name, false
	}

	ext := filepath.Ext(rest)
	stem := strings.TrimSuffix(rest, ext)

	// combine with an existing count, e.g. 'report copy (x1)' plus one more
	// prefix becomes 'report copy (x2)'
	if idx := strings.LastIndex(stem, copyCountMark); idx >= 0 && strings.HasSuffix(stem, ")") {
		countText := stem[idx+len(copyCountMark) : len(stem)-1]
		if prev, err := strconv.Atoi(countText); err == nil {
			count += prev
			stem = stem[:idx]
		}
	}

	return fmt.Sprintf("%s%s%d)%s", stem, copyCountMark, count, ext), true
}

// buildPermissions plans deleting permissions other than the owner's and
// the current account's own
func (b *Builder) buildPermissions(entry domain.Entry, parentPath string) ([]domain.PlanItem, error) {
	if b.account.Type != domain.AccountPersonal {
		return nil, fmt.Errorf(
			"permission changes are only implemented for '%s' accounts, not '%s'; "+
				"use the Google Drive website for other account types",
			domain.AccountPersonal, b.account.Type)
	}

	var items []domain.PlanItem
	for _, permission := range entry.Permissions {
		if err := permission.Validate(); err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry, err)
		}

		isOwner := permission.Role == domain.RoleOwner
		isCurrentUser := permission.Type == domain.PermissionUser &&
			permission.UserEmail == b.account.AccountID

		if isOwner || isCurrentUser {
			b.log.Debug("keep permission", "permission", permission.String())
			continue
		}

		if permission.Type == domain.PermissionAnyone {
			if !b.actions.PermissionsDeleteLink {
				b.log.Debug("config prevented deleting permission",
					"permission", permission.String())
				continue
			}
			item, err := b.items.deletePermission(entry, permission, parentPath)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}

		if b.actions.KeepEmail(permission.UserEmail) {
			b.log.Debug("config prevented deleting permission",
				"permission", permission.String())
			continue
		}

		if !b.actions.PermissionsDeleteOtherUsers {
			b.log.Debug("config prevented deleting permission",
				"permission", permission.String())
			continue
		}

		item, err := b.items.deletePermission(entry, permission, parentPath)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
