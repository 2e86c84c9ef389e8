package domain

import (
	"fmt"
	"strings"
)

// Action is the kind of change a plan item intends
type Action string

const (
	ActionCreateFolder     Action = "create-folder"
	ActionCopyFile         Action = "copy-file"
	ActionRenameFile       Action = "rename-file"
	ActionDeletePermission Action = "delete-permission"
	ActionMoveEntry        Action = "move-entry"
)

// IsValid checks if the action is a known value
func (a Action) IsValid() bool {
	switch a {
	case ActionCreateFolder, ActionCopyFile, ActionRenameFile,
		ActionDeletePermission, ActionMoveEntry:
		return true
	}
	return false
}

// ResultKind classifies the outcome of applying a plan item
type ResultKind string

const (
	// ResultUnknown means the item has not been applied
	ResultUnknown ResultKind = "unknown"
	// ResultSuccess means the mutation was performed
	ResultSuccess ResultKind = "success"
	// ResultSkipped means the goal was already met or policy forbade the change
	ResultSkipped ResultKind = "skipped"
	// ResultFailed means a precondition was not met; the run continues
	ResultFailed ResultKind = "failed"
)

// IsValid checks if the result kind is a known value
func (k ResultKind) IsValid() bool {
	switch k {
	case ResultUnknown, ResultSuccess, ResultSkipped, ResultFailed:
		return true
	}
	return false
}

// StateSnapshot captures one side of a planned change
type StateSnapshot struct {
	// UserName is the pretty name of the user involved in the change
	UserName string

	// UserEmail is the email of the user involved in the change
	UserEmail string

	// UserAccess is the role of the user involved in the change
	UserAccess string

	// EntryName is the name of the file or folder
	EntryName string

	// EntryPath is the path from the top folder to the entry's parent
	EntryPath string
}

// IsZero reports whether no snapshot field is set
func (s StateSnapshot) IsZero() bool {
	return s == StateSnapshot{}
}

// PlanItem is a single intended mutation. Plan items are written during
// planning and read back verbatim during applying, so they must round-trip
// through the plan report without loss.
type PlanItem struct {
	// Action is the kind of change
	Action Action

	// EntryType is 'file', 'folder', or 'permission'
	EntryType string

	// EntryID is the id of the file or folder the change applies to.
	// For move-entry this is the id of the unowned entry, since the owned
	// copy may not exist when the plan is built.
	EntryID string

	// PermissionID is set for delete-permission items only
	PermissionID string

	// Description is free text explaining the planned change
	Description string

	// AccountType is the account type the plan was built for
	AccountType AccountType

	// DriveID is the drive the plan was built for
	DriveID string

	// AccountID is the account the plan was built for
	AccountID string

	// Begin describes the state before the change
	Begin StateSnapshot

	// End describes the intended state after the change
	End StateSnapshot
}

func (p PlanItem) String() string {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	items := []string{string(p.Action)}
	if name := pick(p.Begin.EntryName, p.End.EntryName); name != "" {
		items = append(items, fmt.Sprintf("%s '%s'", p.EntryType, name))
	}
	if path := pick(p.Begin.EntryPath, p.End.EntryPath); path != "" {
		items = append(items, fmt.Sprintf("path '%s'", path))
	}
	if user := pick(p.Begin.UserName, p.End.UserName); user != "" {
		items = append(items, fmt.Sprintf("user '%s'", user))
	}
	if email := pick(p.Begin.UserEmail, p.End.UserEmail); email != "" {
		items = append(items, fmt.Sprintf("email '%s'", email))
	}
	if access := pick(p.Begin.UserAccess, p.End.UserAccess); access != "" {
		items = append(items, fmt.Sprintf("access '%s'", access))
	}
	return strings.Join(items, " ")
}

// OutcomeItem is a plan item plus the recorded result of applying it.
// Outcomes are never mutated after creation.
type OutcomeItem struct {
	PlanItem

	// Result classifies what happened
	Result ResultKind

	// ResultDescription explains the result
	ResultDescription string
}

// NewOutcome builds an outcome for a plan item
func NewOutcome(item PlanItem, kind ResultKind, description string) OutcomeItem {
	return OutcomeItem{
		PlanItem:          item,
		Result:            kind,
		ResultDescription: description,
	}
}
