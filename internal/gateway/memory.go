package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Ning0612/Drivemover/internal/domain"
)

// MemoryGateway is an in-memory Gateway for tests. It mimics the remote
// store's listing order (folders first, then by name) and counts mutating
// calls so idempotence can be asserted.
type MemoryGateway struct {
	mu      sync.Mutex
	entries map[string]domain.Entry
	owner   *domain.Permission
	nextID  int

	// Mutations counts calls that change remote state
	Mutations int
}

// NewMemoryGateway creates an empty in-memory gateway
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		entries: make(map[string]domain.Entry),
	}
}

// Put seeds or replaces an entry
func (m *MemoryGateway) Put(entry domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = cloneEntry(entry)
}

// Entry returns the current state of an entry, for assertions
func (m *MemoryGateway) Entry(id string) (domain.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return domain.Entry{}, false
	}
	return cloneEntry(entry), true
}

func (m *MemoryGateway) GetEntry(ctx context.Context, id string) (domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return domain.Entry{}, fmt.Errorf("%w: entry '%s'", domain.ErrNotFound, id)
	}
	return cloneEntry(entry), nil
}

func (m *MemoryGateway) ListChildren(ctx context.Context, parentID string) ([]domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var children []domain.Entry
	for _, entry := range m.entries {
		if entry.ParentID == parentID {
			children = append(children, cloneEntry(entry))
		}
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].IsFolder() != children[j].IsFolder() {
			return children[i].IsFolder()
		}
		if children[i].Name != children[j].Name {
			return children[i].Name < children[j].Name
		}
		return children[i].ID < children[j].ID
	})
	return children, nil
}

func (m *MemoryGateway) ListPermissions(ctx context.Context, entryID string) ([]domain.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: entry '%s'", domain.ErrNotFound, entryID)
	}
	perms := make([]domain.Permission, len(entry.Permissions))
	copy(perms, entry.Permissions)
	return perms, nil
}

func (m *MemoryGateway) FindByProperty(ctx context.Context, key, value string) ([]domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []domain.Entry
	for _, entry := range m.entries {
		if entry.Properties[key] == value {
			matches = append(matches, cloneEntry(entry))
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (m *MemoryGateway) CreateFolder(ctx context.Context, template domain.Entry, parentID string) (domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations++
	m.nextID++
	folder := domain.Entry{
		ID:         fmt.Sprintf("mem-%d", m.nextID),
		Name:       template.Name,
		MimeType:   domain.MimeTypeFolder,
		ParentID:   parentID,
		CreatedAt:  template.CreatedAt,
		ModifiedAt: template.ModifiedAt,
		Properties: map[string]string{domain.PropKeyOriginalID: template.ID},
		Permissions: []domain.Permission{
			m.ownerPermission(),
		},
	}
	m.entries[folder.ID] = folder
	return cloneEntry(folder), nil
}

func (m *MemoryGateway) CopyFile(ctx context.Context, template domain.Entry, parentID string) (domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations++
	m.nextID++
	file := domain.Entry{
		ID:          fmt.Sprintf("mem-%d", m.nextID),
		Name:        template.Name,
		MimeType:    template.MimeType,
		Description: template.Description,
		ParentID:    parentID,
		CreatedAt:   template.CreatedAt,
		ModifiedAt:  template.ModifiedAt,
		SizeBytes:   template.SizeBytes,
		Checksum:    template.Checksum,
		Properties:  map[string]string{domain.PropKeyOriginalID: template.ID},
		Permissions: []domain.Permission{
			m.ownerPermission(),
		},
	}
	m.entries[file.ID] = file
	return cloneEntry(file), nil
}

func (m *MemoryGateway) UpdateProperties(ctx context.Context, entryID string, props map[string]string) (domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[entryID]
	if !ok {
		return domain.Entry{}, fmt.Errorf("%w: entry '%s'", domain.ErrNotFound, entryID)
	}
	m.Mutations++
	entry = cloneEntry(entry)
	if entry.Properties == nil {
		entry.Properties = make(map[string]string)
	}
	for k, v := range props {
		if v == "" {
			delete(entry.Properties, k)
		} else {
			entry.Properties[k] = v
		}
	}
	m.entries[entryID] = entry
	return cloneEntry(entry), nil
}

func (m *MemoryGateway) RenameEntry(ctx context.Context, entryID, newName string) (domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[entryID]
	if !ok {
		return domain.Entry{}, fmt.Errorf("%w: entry '%s'", domain.ErrNotFound, entryID)
	}
	m.Mutations++
	entry = cloneEntry(entry)
	entry.Name = newName
	m.entries[entryID] = entry
	return cloneEntry(entry), nil
}

func (m *MemoryGateway) MoveEntry(ctx context.Context, entryID, newParentID string) (domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[entryID]
	if !ok {
		return domain.Entry{}, fmt.Errorf("%w: entry '%s'", domain.ErrNotFound, entryID)
	}
	m.Mutations++
	entry = cloneEntry(entry)
	entry.ParentID = newParentID
	m.entries[entryID] = entry
	return cloneEntry(entry), nil
}

func (m *MemoryGateway) DeletePermission(ctx context.Context, entryID, permissionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[entryID]
	if !ok {
		return fmt.Errorf("%w: entry '%s'", domain.ErrNotFound, entryID)
	}
	for i, p := range entry.Permissions {
		if p.ID == permissionID {
			m.Mutations++
			entry = cloneEntry(entry)
			entry.Permissions = append(entry.Permissions[:i], entry.Permissions[i+1:]...)
			m.entries[entryID] = entry
			return nil
		}
	}
	return fmt.Errorf("%w: permission '%s' on entry '%s'",
		domain.ErrNotFound, permissionID, entryID)
}

// Owner is the account granted ownership of entries created by the fake
var memoryOwner = domain.Permission{
	ID:          "perm-memory-owner",
	Type:        domain.PermissionUser,
	Role:        domain.RoleOwner,
	UserEmail:   "current-user@example.com",
	DisplayName: "Current User",
}

// SetOwner overrides the owner permission applied to created entries
func (m *MemoryGateway) SetOwner(p domain.Permission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owner = &p
}

func (m *MemoryGateway) ownerPermission() domain.Permission {
	if m.owner != nil {
		return *m.owner
	}
	return memoryOwner
}

func cloneEntry(entry domain.Entry) domain.Entry {
	clone := entry
	if entry.Properties != nil {
		clone.Properties = make(map[string]string, len(entry.Properties))
		for k, v := range entry.Properties {
			clone.Properties[k] = v
		}
	}
	if entry.Permissions != nil {
		clone.Permissions = make([]domain.Permission, len(entry.Permissions))
		copy(clone.Permissions, entry.Permissions)
	}
	return clone
}

// Compile-time interface check
var _ Gateway = (*MemoryGateway)(nil)
