package gateway

import (
	"context"

	"github.com/Ning0612/Drivemover/internal/domain"
)

// Gateway is the narrow interface the reconciliation core uses to talk to
// the remote store. Implementations handle pagination and retry internally;
// a call either returns a result or a fatal error after retries are
// exhausted. Entries returned by any call carry their full permission list.
type Gateway interface {
	// GetEntry returns a single entry by id.
	// Returns domain.ErrNotFound if the entry does not exist.
	GetEntry(ctx context.Context, id string) (domain.Entry, error)

	// ListChildren returns the direct children of a folder,
	// folders first, then by name.
	ListChildren(ctx context.Context, parentID string) ([]domain.Entry, error)

	// ListPermissions returns all permissions on an entry.
	ListPermissions(ctx context.Context, entryID string) ([]domain.Permission, error)

	// FindByProperty returns entries whose shared property key equals value.
	FindByProperty(ctx context.Context, key, value string) ([]domain.Entry, error)

	// CreateFolder creates an empty folder under parentID copying the
	// template's name and timestamps. The new folder carries the
	// original-id pairing property referencing the template.
	CreateFolder(ctx context.Context, template domain.Entry, parentID string) (domain.Entry, error)

	// CopyFile copies a file into parentID keeping the template's name,
	// description, and timestamps. The copy carries the original-id
	// pairing property referencing the template.
	CopyFile(ctx context.Context, template domain.Entry, parentID string) (domain.Entry, error)

	// UpdateProperties merges the given shared properties into the entry.
	// An empty value for a key removes that key.
	UpdateProperties(ctx context.Context, entryID string, props map[string]string) (domain.Entry, error)

	// RenameEntry changes the entry's name.
	RenameEntry(ctx context.Context, entryID, newName string) (domain.Entry, error)

	// MoveEntry reparents the entry under newParentID.
	MoveEntry(ctx context.Context, entryID, newParentID string) (domain.Entry, error)

	// DeletePermission removes a permission from an entry.
	// Returns domain.ErrNotFound if the permission does not exist.
	DeletePermission(ctx context.Context, entryID, permissionID string) error
}
