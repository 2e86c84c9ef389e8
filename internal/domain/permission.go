package domain

import "fmt"

// Role is a Google Drive permission role
// Ref: https://developers.google.com/drive/api/guides/ref-roles
type Role string

const (
	RoleOwner         Role = "owner"
	RoleEditor        Role = "writer"
	RoleCommenter     Role = "commenter"
	RoleViewer        Role = "reader"
	RoleOrganizer     Role = "organizer"
	RoleFileOrganizer Role = "fileOrganizer"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleCommenter, RoleViewer, RoleOrganizer, RoleFileOrganizer:
		return true
	}
	return false
}

// PermissionType is the grantee category of a permission
type PermissionType string

const (
	// PermissionUser requires UserEmail to be set
	PermissionUser PermissionType = "user"
	// PermissionGroup requires UserEmail to be set
	PermissionGroup PermissionType = "group"
	// PermissionDomain requires Domain to be set
	PermissionDomain PermissionType = "domain"
	// PermissionAnyone carries neither an email nor a domain
	PermissionAnyone PermissionType = "anyone"
)

// IsValid checks if the permission type is a known value
func (t PermissionType) IsValid() bool {
	switch t {
	case PermissionUser, PermissionGroup, PermissionDomain, PermissionAnyone:
		return true
	}
	return false
}

// Permission is a single access-control entry on an Entry
type Permission struct {
	// ID identifies the permission, e.g. '11823143700967846661', 'anyoneWithLink'
	ID string

	// Type is the grantee category
	Type PermissionType

	// Role is the level of access granted
	Role Role

	// UserEmail is the grantee email; set for user and group types
	UserEmail string

	// Domain is the grantee domain; set for domain type
	Domain string

	// DisplayName is the pretty name of the grantee; empty for anyone
	DisplayName string
}

// Validate checks the type-conditional field requirements
func (p Permission) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: permission without id", ErrUnknownPermission)
	}
	if !p.Type.IsValid() {
		return fmt.Errorf("%w: type '%s'", ErrUnknownPermission, p.Type)
	}
	if !p.Role.IsValid() {
		return fmt.Errorf("%w: role '%s'", ErrUnknownPermission, p.Role)
	}
	switch p.Type {
	case PermissionUser, PermissionGroup:
		if p.UserEmail == "" {
			return fmt.Errorf("%w: %s permission without email", ErrUnknownPermission, p.Type)
		}
	case PermissionDomain:
		if p.Domain == "" {
			return fmt.Errorf("%w: domain permission without domain", ErrUnknownPermission)
		}
	}
	return nil
}

func (p Permission) String() string {
	switch p.Type {
	case PermissionUser, PermissionGroup:
		return fmt.Sprintf("%s <%s> (%s)", p.DisplayName, p.UserEmail, p.Role)
	case PermissionDomain:
		return fmt.Sprintf("%s (%s)", p.Domain, p.Role)
	case PermissionAnyone:
		return fmt.Sprintf("anyone with link (%s)", p.Role)
	}
	return fmt.Sprintf("unknown '%s' (%s)", p.Type, p.Role)
}
