package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MimeTypeFolder is the MIME type Google Drive uses for folders
const MimeTypeFolder = "application/vnd.google-apps.folder"

// Pairing property keys. An owned copy carries PropKeyOriginalID pointing at
// the unowned original; the original carries PropKeyCopyID pointing at the
// copy. The keys are prefixed so they never collide with user-set properties.
const (
	PropKeyOriginalID = "CustomFileMoverOriginalFileId"
	PropKeyCopyID     = "CustomFileMoverCopyFileId"
)

// Entry represents a Google Drive file or folder
type Entry struct {
	// ID is the identifier of the file or folder
	ID string

	// Name of the file or folder; duplicates are possible
	Name string

	// MimeType of the file or folder
	MimeType string

	// Description is a short free-text description of the entry
	Description string

	// ParentID is the identifier of the single containing folder
	ParentID string

	// CreatedAt is the time the entry was created
	CreatedAt time.Time

	// ModifiedAt is the last time anyone modified the entry
	ModifiedAt time.Time

	// SizeBytes is the content size; zero for folders and shortcuts
	SizeBytes int64

	// QuotaBytes is the storage quota used, including kept revisions
	QuotaBytes int64

	// Checksum is the content checksum for binary files (may be empty)
	Checksum string

	// ViewLink opens the entry in a browser
	ViewLink string

	// Properties holds arbitrary key-value pairs visible to all apps,
	// including the pairing properties this tool maintains
	Properties map[string]string

	// Permissions are all access-control entries on this entry
	Permissions []Permission
}

// IsFolder returns true if this entry is a folder
func (e Entry) IsFolder() bool {
	return e.MimeType == MimeTypeFolder
}

// EntryType returns "folder" or "file"
func (e Entry) EntryType() string {
	if e.IsFolder() {
		return "folder"
	}
	return "file"
}

// Property returns the value for a shared property key, or "" if unset
func (e Entry) Property(key string) string {
	return e.Properties[key]
}

// OwnerPermission returns the single user-type owner permission.
// Zero or more than one owner is an integrity violation.
func (e Entry) OwnerPermission() (Permission, error) {
	var owners []Permission
	for _, p := range e.Permissions {
		if p.Role == RoleOwner && p.Type == PermissionUser {
			owners = append(owners, p)
		}
	}
	switch len(owners) {
	case 1:
		return owners[0], nil
	case 0:
		return Permission{}, fmt.Errorf("%w: no owner for %s", ErrIntegrity, e)
	default:
		return Permission{}, fmt.Errorf("%w: more than one owner for %s", ErrIntegrity, e)
	}
}

// IsOwnedBy reports whether the entry's owner permission matches the email
func (e Entry) IsOwnedBy(email string) (bool, error) {
	owner, err := e.OwnerPermission()
	if err != nil {
		return false, err
	}
	return owner.UserEmail == email, nil
}

// PermissionByEmail returns the permission granted to the given email, if any
func (e Entry) PermissionByEmail(email string) (Permission, bool) {
	for _, p := range e.Permissions {
		if p.UserEmail != "" && p.UserEmail == email {
			return p, true
		}
	}
	return Permission{}, false
}

// PermissionByID returns the permission with the given id, if any
func (e Entry) PermissionByID(id string) (Permission, bool) {
	for _, p := range e.Permissions {
		if p.ID == id {
			return p, true
		}
	}
	return Permission{}, false
}

func (e Entry) String() string {
	props := make([]string, 0, len(e.Properties))
	for k, v := range e.Properties {
		props = append(props, k+"="+v)
	}
	sort.Strings(props)
	return fmt.Sprintf("%s '%s' (id %s) props '%s'",
		e.EntryType(), e.Name, e.ID, strings.Join(props, ";"))
}

// PathString joins the names of the entries root-to-entry with slashes
func PathString(entryPath []Entry) string {
	names := make([]string, 0, len(entryPath))
	for _, entry := range entryPath {
		if entry.Name != "" {
			names = append(names, entry.Name)
		}
	}
	return strings.Join(names, "/")
}
