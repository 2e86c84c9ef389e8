package planner

import (
	"fmt"

	"github.com/Ning0612/Drivemover/internal/domain"
)

// itemBuilder constructs plan items for one account. Each constructor
// validates the structural preconditions for its action before building
// the item, so a malformed request fails at plan time rather than at
// apply time.
type itemBuilder struct {
	account domain.Account
}

func (b itemBuilder) base(action domain.Action, entry domain.Entry) domain.PlanItem {
	return domain.PlanItem{
		Action:      action,
		EntryType:   entry.EntryType(),
		EntryID:     entry.ID,
		AccountType: b.account.Type,
		DriveID:     b.account.DriveID,
		AccountID:   b.account.AccountID,
	}
}

func (b itemBuilder) requirePersonal() error {
	if b.account.Type != domain.AccountPersonal {
		return fmt.Errorf("not a personal account '%s'", b.account.Type)
	}
	return nil
}

// createFolder plans an owned folder with the same name as the unowned one
func (b itemBuilder) createFolder(entry domain.Entry, user domain.Permission, parentPath string) (domain.PlanItem, error) {
	if !entry.IsFolder() {
		return domain.PlanItem{}, fmt.Errorf("entry is not a folder '%s'", entry.Name)
	}
	if err := b.requirePersonal(); err != nil {
		return domain.PlanItem{}, err
	}

	item := b.base(domain.ActionCreateFolder, entry)
	item.Description = "create an owned folder with same name"
	item.End = domain.StateSnapshot{
		UserName:   user.DisplayName,
		UserEmail:  b.account.AccountID,
		UserAccess: string(domain.RoleOwner),
		EntryName:  entry.Name,
		EntryPath:  parentPath,
	}
	return item, nil
}

// copyFile plans an owned copy of an unowned file
func (b itemBuilder) copyFile(entry domain.Entry, user domain.Permission, parentPath string) (domain.PlanItem, error) {
	if entry.IsFolder() {
		return domain.PlanItem{}, fmt.Errorf("entry is not a file '%s'", entry.Name)
	}
	if err := b.requirePersonal(); err != nil {
		return domain.PlanItem{}, err
	}

	owner, err := entry.OwnerPermission()
	if err != nil {
		return domain.PlanItem{}, err
	}

	item := b.base(domain.ActionCopyFile, entry)
	item.Description = "copy file to create a new file owned by the current user"
	item.Begin = domain.StateSnapshot{
		UserName:   owner.DisplayName,
		UserEmail:  owner.UserEmail,
		UserAccess: string(owner.Role),
		EntryName:  entry.Name,
		EntryPath:  parentPath,
	}
	item.End = domain.StateSnapshot{
		UserName:   user.DisplayName,
		UserEmail:  b.account.AccountID,
		UserAccess: string(domain.RoleOwner),
		EntryName:  entry.Name,
		EntryPath:  parentPath,
	}
	return item, nil
}

// renameFile plans a rename of an owned file
func (b itemBuilder) renameFile(entry domain.Entry, newName string, owner domain.Permission, parentPath string) (domain.PlanItem, error) {
	if entry.IsFolder() {
		return domain.PlanItem{}, fmt.Errorf("entry is not a file '%s'", entry.Name)
	}

	item := b.base(domain.ActionRenameFile, entry)
	item.Description = "rename file"
	item.Begin = domain.StateSnapshot{
		UserName:   owner.DisplayName,
		UserEmail:  owner.UserEmail,
		UserAccess: string(owner.Role),
		EntryName:  entry.Name,
		EntryPath:  parentPath,
	}
	item.End = domain.StateSnapshot{
		UserName:   owner.DisplayName,
		UserEmail:  owner.UserEmail,
		UserAccess: string(owner.Role),
		EntryName:  newName,
		EntryPath:  parentPath,
	}
	return item, nil
}

// deletePermission plans the removal of a non-owner permission
func (b itemBuilder) deletePermission(entry domain.Entry, permission domain.Permission, parentPath string) (domain.PlanItem, error) {
	if permission.Role == domain.RoleOwner {
		return domain.PlanItem{}, fmt.Errorf("cannot delete '%s' role", domain.RoleOwner)
	}
	if err := b.requirePersonal(); err != nil {
		return domain.PlanItem{}, err
	}

	item := b.base(domain.ActionDeletePermission, entry)
	item.PermissionID = permission.ID
	item.Description = "delete permission for non-owner and not current user"
	item.Begin = domain.StateSnapshot{
		UserName:   permission.DisplayName,
		UserEmail:  permission.UserEmail,
		UserAccess: string(permission.Role),
		EntryName:  entry.Name,
		EntryPath:  parentPath,
	}
	return item, nil
}

// moveEntry plans moving an entry out of an unowned folder. The item
// carries the unowned entry's id; the owned copy may not exist yet.
func (b itemBuilder) moveEntry(entry domain.Entry, user domain.Permission, parentPath string) (domain.PlanItem, error) {
	if err := b.requirePersonal(); err != nil {
		return domain.PlanItem{}, err
	}

	snapshot := domain.StateSnapshot{
		UserName:   user.DisplayName,
		UserEmail:  b.account.AccountID,
		UserAccess: string(domain.RoleOwner),
		EntryName:  entry.Name,
		EntryPath:  parentPath,
	}

	item := b.base(domain.ActionMoveEntry, entry)
	item.Description = "move an entry from an unowned folder to an owned folder"
	item.Begin = snapshot
	item.End = snapshot
	return item, nil
}
