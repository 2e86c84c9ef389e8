package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/Ning0612/Drivemover/internal/domain"
)

func seedEntry(id, name, parentID string) domain.Entry {
	return domain.Entry{
		ID:         id,
		Name:       name,
		MimeType:   "application/pdf",
		ParentID:   parentID,
		Properties: map[string]string{},
	}
}

func TestGetEntryNotFound(t *testing.T) {
	gw := NewMemoryGateway()
	_, err := gw.GetEntry(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListChildrenOrder(t *testing.T) {
	gw := NewMemoryGateway()
	gw.Put(seedEntry("b", "beta.pdf", "top"))
	gw.Put(seedEntry("a", "alpha.pdf", "top"))
	folder := seedEntry("f", "zeta", "top")
	folder.MimeType = domain.MimeTypeFolder
	gw.Put(folder)

	children, err := gw.ListChildren(context.Background(), "top")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3", len(children))
	}
	// folders sort before files, then by name
	if children[0].ID != "f" || children[1].ID != "a" || children[2].ID != "b" {
		t.Errorf("order = %s, %s, %s", children[0].ID, children[1].ID, children[2].ID)
	}
}

func TestFindByProperty(t *testing.T) {
	gw := NewMemoryGateway()
	entry := seedEntry("file", "report.pdf", "top")
	entry.Properties[domain.PropKeyOriginalID] = "original"
	gw.Put(entry)
	gw.Put(seedEntry("other", "other.pdf", "top"))

	matches, err := gw.FindByProperty(context.Background(), domain.PropKeyOriginalID, "original")
	if err != nil {
		t.Fatalf("FindByProperty: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "file" {
		t.Fatalf("matches = %v", matches)
	}
}

func TestUpdatePropertiesRemovesEmptyValues(t *testing.T) {
	gw := NewMemoryGateway()
	entry := seedEntry("file", "report.pdf", "top")
	entry.Properties[domain.PropKeyOriginalID] = "original"
	gw.Put(entry)

	updated, err := gw.UpdateProperties(context.Background(), "file", map[string]string{
		domain.PropKeyOriginalID: "",
		domain.PropKeyCopyID:     "copy",
	})
	if err != nil {
		t.Fatalf("UpdateProperties: %v", err)
	}
	if updated.Property(domain.PropKeyOriginalID) != "" {
		t.Error("empty value did not remove the property")
	}
	if updated.Property(domain.PropKeyCopyID) != "copy" {
		t.Errorf("copy id = %q", updated.Property(domain.PropKeyCopyID))
	}
}

func TestPutIsolatesCallerState(t *testing.T) {
	gw := NewMemoryGateway()
	entry := seedEntry("file", "report.pdf", "top")
	gw.Put(entry)

	// mutating the caller's copy must not affect the stored entry
	entry.Name = "changed.pdf"
	entry.Properties["key"] = "value"

	stored, _ := gw.Entry("file")
	if stored.Name != "report.pdf" {
		t.Errorf("stored name = %q", stored.Name)
	}
	if stored.Property("key") != "" {
		t.Error("stored properties aliased the caller's map")
	}
}

func TestMutationsCounter(t *testing.T) {
	gw := NewMemoryGateway()
	gw.Put(seedEntry("file", "report.pdf", "top"))

	if _, err := gw.GetEntry(context.Background(), "file"); err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if gw.Mutations != 0 {
		t.Fatalf("read counted as mutation")
	}

	if _, err := gw.RenameEntry(context.Background(), "file", "renamed.pdf"); err != nil {
		t.Fatalf("RenameEntry: %v", err)
	}
	if _, err := gw.MoveEntry(context.Background(), "file", "elsewhere"); err != nil {
		t.Fatalf("MoveEntry: %v", err)
	}
	if gw.Mutations != 2 {
		t.Fatalf("mutations = %d, want 2", gw.Mutations)
	}
}
