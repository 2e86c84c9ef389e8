// Package testutil provides fixtures shared by the package tests.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/Ning0612/Drivemover/internal/domain"
)

// OwnerEmail is the account email the fixtures treat as the current user
const OwnerEmail = "current-user@example.com"

// OtherEmail is a second user appearing in sharing fixtures
const OtherEmail = "other-user@example.com"

// FixtureTime is the fixed timestamp used by entry fixtures
var FixtureTime = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

// TempDir creates a temporary directory for testing.
// It returns the directory path and a cleanup function.
func TempDir(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "drivemover-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

// Account returns a personal account fixture rooted at topFolderID
func Account(topFolderID string) domain.Account {
	return domain.Account{
		Type:        domain.AccountPersonal,
		DriveID:     domain.DriveNameMyDrive,
		AccountID:   OwnerEmail,
		TopFolderID: topFolderID,
	}
}

// OwnerPermission returns an owner permission for the given email
func OwnerPermission(id, email string) domain.Permission {
	return domain.Permission{
		ID:          id,
		Type:        domain.PermissionUser,
		Role:        domain.RoleOwner,
		UserEmail:   email,
		DisplayName: email,
	}
}

// UserPermission returns a non-owner user permission for the given email
func UserPermission(id, email string, role domain.Role) domain.Permission {
	return domain.Permission{
		ID:          id,
		Type:        domain.PermissionUser,
		Role:        role,
		UserEmail:   email,
		DisplayName: email,
	}
}

// AnyonePermission returns an 'anyone with link' permission
func AnyonePermission(id string, role domain.Role) domain.Permission {
	return domain.Permission{
		ID:   id,
		Type: domain.PermissionAnyone,
		Role: role,
	}
}

// Folder returns a folder entry owned by ownerEmail
func Folder(id, name, parentID, ownerEmail string) domain.Entry {
	return domain.Entry{
		ID:         id,
		Name:       name,
		MimeType:   domain.MimeTypeFolder,
		ParentID:   parentID,
		CreatedAt:  FixtureTime,
		ModifiedAt: FixtureTime,
		Properties: map[string]string{},
		Permissions: []domain.Permission{
			OwnerPermission("perm-owner-"+id, ownerEmail),
		},
	}
}

// File returns a file entry owned by ownerEmail
func File(id, name, parentID, ownerEmail string) domain.Entry {
	return domain.Entry{
		ID:         id,
		Name:       name,
		MimeType:   "application/pdf",
		ParentID:   parentID,
		CreatedAt:  FixtureTime,
		ModifiedAt: FixtureTime,
		SizeBytes:  1024,
		QuotaBytes: 1024,
		Checksum:   "checksum-" + id,
		Properties: map[string]string{},
		Permissions: []domain.Permission{
			OwnerPermission("perm-owner-"+id, ownerEmail),
		},
	}
}

// SharedFile returns a file owned by ownerEmail and shared with the
// current user as a viewer, which is how unowned entries appear
func SharedFile(id, name, parentID, ownerEmail string) domain.Entry {
	entry := File(id, name, parentID, ownerEmail)
	entry.Permissions = append(entry.Permissions,
		UserPermission("perm-user-"+id, OwnerEmail, domain.RoleViewer))
	return entry
}

// SharedFolder returns a folder owned by ownerEmail and shared with the
// current user as a viewer
func SharedFolder(id, name, parentID, ownerEmail string) domain.Entry {
	entry := Folder(id, name, parentID, ownerEmail)
	entry.Permissions = append(entry.Permissions,
		UserPermission("perm-user-"+id, OwnerEmail, domain.RoleViewer))
	return entry
}
