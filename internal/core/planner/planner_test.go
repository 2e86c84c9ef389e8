package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/Ning0612/Drivemover/internal/core/pairing"
	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/gateway"
	"github.com/Ning0612/Drivemover/internal/logger"
	"github.com/Ning0612/Drivemover/internal/testutil"
)

var allActions = domain.Actions{
	PermissionsDeleteOtherUsers:      true,
	PermissionsDeleteLink:            true,
	EntryNameDeletePrefixCopyOf:      true,
	CreateOwnedFileCopy:              true,
	CreateOwnedFolderAndMoveContents: true,
}

func newBuilder(gw gateway.Gateway, actions domain.Actions) *Builder {
	account := testutil.Account("top")
	pairs := pairing.NewResolver(gw, account)
	return New(gw, pairs, account, actions, &logger.NullLogger{})
}

func topFolder() domain.Entry {
	return testutil.Folder("top", "Top", "", testutil.OwnerEmail)
}

func actionsOf(items []domain.PlanItem) []domain.Action {
	actions := make([]domain.Action, len(items))
	for i, item := range items {
		actions[i] = item.Action
	}
	return actions
}

func TestCleanedCopyName(t *testing.T) {
	cases := []struct {
		name    string
		want    string
		changed bool
	}{
		{"report.pdf", "report.pdf", false},
		{"Copy of report.pdf", "report copy (x1).pdf", true},
		{"Copy of Copy of report.pdf", "report copy (x2).pdf", true},
		{"Copy of report copy (x1).pdf", "report copy (x2).pdf", true},
		{"copy of COPY OF data.txt", "data copy (x2).txt", true},
		{"Copy of notes", "notes copy (x1)", true},
		{"A Copy of report.pdf", "A Copy of report.pdf", false},
	}

	for _, c := range cases {
		got, changed := cleanedCopyName(c.name)
		if got != c.want || changed != c.changed {
			t.Errorf("cleanedCopyName(%q) = (%q, %v), want (%q, %v)",
				c.name, got, changed, c.want, c.changed)
		}
	}
}

func TestTopFolderGuard(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	top.Permissions = append(top.Permissions,
		testutil.AnyonePermission("perm-link", domain.RoleViewer))
	gw.Put(top)

	items, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items for the top folder, got %v", actionsOf(items))
	}

	allowed := allActions
	allowed.AllowChangingTopFolder = true
	items, err = newBuilder(gw, allowed).BuildPlans(
		context.Background(), []domain.Entry{top})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Action != domain.ActionDeletePermission {
		t.Fatalf("expected one delete-permission item, got %v", actionsOf(items))
	}
}

func TestUnownedFolderPlansCreate(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	shared := testutil.SharedFolder("shared", "Team Docs", "top", testutil.OtherEmail)
	gw.Put(top)
	gw.Put(shared)

	items, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top, shared})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", actionsOf(items))
	}

	item := items[0]
	if item.Action != domain.ActionCreateFolder {
		t.Errorf("action = %s, want %s", item.Action, domain.ActionCreateFolder)
	}
	if item.EntryID != "shared" {
		t.Errorf("entry id = %s, want shared", item.EntryID)
	}
	if !item.Begin.IsZero() {
		t.Errorf("expected empty begin state, got %+v", item.Begin)
	}
	if item.End.EntryName != "Team Docs" || item.End.EntryPath != "Top" {
		t.Errorf("end state = %+v", item.End)
	}
	if item.End.UserEmail != testutil.OwnerEmail || item.End.UserAccess != string(domain.RoleOwner) {
		t.Errorf("end user = %+v", item.End)
	}
}

func TestUnownedFolderWithExistingPair(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	shared := testutil.SharedFolder("shared", "Team Docs", "top", testutil.OtherEmail)
	shared.Properties[domain.PropKeyCopyID] = "copy"
	owned := testutil.Folder("copy", "Team Docs", "top", testutil.OwnerEmail)
	owned.Properties[domain.PropKeyOriginalID] = "shared"
	gw.Put(top)
	gw.Put(shared)
	gw.Put(owned)

	items, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top, shared})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items when the pair exists, got %v", actionsOf(items))
	}
}

func TestUnownedFolderDisabledByConfig(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	shared := testutil.SharedFolder("shared", "Team Docs", "top", testutil.OtherEmail)
	gw.Put(top)
	gw.Put(shared)

	actions := allActions
	actions.CreateOwnedFolderAndMoveContents = false

	items, err := newBuilder(gw, actions).BuildPlans(
		context.Background(), []domain.Entry{top, shared})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items when disabled, got %v", actionsOf(items))
	}
}

func TestUnownedFilePlansCopy(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	shared := testutil.SharedFile("file", "report.pdf", "top", testutil.OtherEmail)
	gw.Put(top)
	gw.Put(shared)

	items, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top, shared})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", actionsOf(items))
	}

	item := items[0]
	if item.Action != domain.ActionCopyFile {
		t.Errorf("action = %s, want %s", item.Action, domain.ActionCopyFile)
	}
	if item.Begin.UserEmail != testutil.OtherEmail {
		t.Errorf("begin user email = %s, want %s", item.Begin.UserEmail, testutil.OtherEmail)
	}
	if item.End.UserEmail != testutil.OwnerEmail {
		t.Errorf("end user email = %s, want %s", item.End.UserEmail, testutil.OwnerEmail)
	}
}

func TestUnownedFilePairIsFolder(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	shared := testutil.SharedFile("file", "report.pdf", "top", testutil.OtherEmail)
	shared.Properties[domain.PropKeyCopyID] = "copy"
	pair := testutil.Folder("copy", "report.pdf", "top", testutil.OwnerEmail)
	pair.Properties[domain.PropKeyOriginalID] = "file"
	gw.Put(top)
	gw.Put(shared)
	gw.Put(pair)

	_, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top, shared})
	if !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity when the pair is a folder, got %v", err)
	}
}

func TestMovePlansOwnedEntryInUnownedFolder(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	sharedFolder := testutil.SharedFolder("shared", "Team Docs", "top", testutil.OtherEmail)
	ownedFile := testutil.File("mine", "notes.pdf", "shared", testutil.OwnerEmail)
	gw.Put(top)
	gw.Put(sharedFolder)
	gw.Put(ownedFile)

	items, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top, sharedFolder, ownedFile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Action != domain.ActionMoveEntry {
		t.Fatalf("expected one move-entry item, got %v", actionsOf(items))
	}
	if items[0].EntryID != "mine" {
		t.Errorf("entry id = %s, want mine", items[0].EntryID)
	}
}

func TestMoveSkippedWhenCopyAlreadyMoved(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	sharedFolder := testutil.SharedFolder("shared", "Team Docs", "top", testutil.OtherEmail)
	ownedFolder := testutil.Folder("owned", "Team Docs", "top", testutil.OwnerEmail)
	ownedFolder.Properties[domain.PropKeyOriginalID] = "shared"
	sharedFolder.Properties[domain.PropKeyCopyID] = "owned"

	sharedFile := testutil.SharedFile("file", "report.pdf", "shared", testutil.OtherEmail)
	sharedFile.Properties[domain.PropKeyCopyID] = "copy"
	// the copy is already in the owned folder
	copied := testutil.File("copy", "report.pdf", "owned", testutil.OwnerEmail)
	copied.Properties[domain.PropKeyOriginalID] = "file"

	gw.Put(top)
	gw.Put(sharedFolder)
	gw.Put(ownedFolder)
	gw.Put(sharedFile)
	gw.Put(copied)

	items, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top, sharedFolder, sharedFile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items when already moved, got %v", actionsOf(items))
	}
}

func TestRenamePlansCleanedName(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	file := testutil.File("file", "Copy of Copy of report.pdf", "top", testutil.OwnerEmail)
	gw.Put(top)
	gw.Put(file)

	items, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top, file})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Action != domain.ActionRenameFile {
		t.Fatalf("expected one rename-file item, got %v", actionsOf(items))
	}

	item := items[0]
	if item.Begin.EntryName != "Copy of Copy of report.pdf" {
		t.Errorf("begin name = %q", item.Begin.EntryName)
	}
	if item.End.EntryName != "report copy (x2).pdf" {
		t.Errorf("end name = %q, want %q", item.End.EntryName, "report copy (x2).pdf")
	}
}

func TestRenameNeverForUnownedEntries(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	shared := testutil.SharedFile("file", "Copy of report.pdf", "top", testutil.OtherEmail)
	gw.Put(top)
	gw.Put(shared)

	actions := allActions
	actions.CreateOwnedFileCopy = false

	items, err := newBuilder(gw, actions).BuildPlans(
		context.Background(), []domain.Entry{top, shared})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range items {
		if item.Action == domain.ActionRenameFile {
			t.Fatalf("unexpected rename for an unowned entry: %v", item)
		}
	}
}

func TestRenameDisabledByConfig(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	file := testutil.File("file", "Copy of report.pdf", "top", testutil.OwnerEmail)
	gw.Put(top)
	gw.Put(file)

	actions := allActions
	actions.EntryNameDeletePrefixCopyOf = false

	items, err := newBuilder(gw, actions).BuildPlans(
		context.Background(), []domain.Entry{top, file})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items when rename is disabled, got %v", actionsOf(items))
	}
}

func TestPermissionPlans(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	file := testutil.File("file", "report.pdf", "top", testutil.OwnerEmail)
	file.Permissions = append(file.Permissions,
		testutil.AnyonePermission("perm-link", domain.RoleViewer),
		testutil.UserPermission("perm-other", testutil.OtherEmail, domain.RoleEditor),
		testutil.UserPermission("perm-keep", "keep-me@example.com", domain.RoleViewer),
	)
	gw.Put(top)
	gw.Put(file)

	actions := allActions
	actions.PermissionsKeepEmails = []string{"keep-me@example.com"}

	items, err := newBuilder(gw, actions).BuildPlans(
		context.Background(), []domain.Entry{top, file})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 delete-permission items, got %v", actionsOf(items))
	}

	deleted := map[string]bool{}
	for _, item := range items {
		if item.Action != domain.ActionDeletePermission {
			t.Errorf("action = %s, want %s", item.Action, domain.ActionDeletePermission)
		}
		deleted[item.PermissionID] = true
	}
	if !deleted["perm-link"] || !deleted["perm-other"] {
		t.Errorf("deleted permissions = %v", deleted)
	}
	if deleted["perm-keep"] {
		t.Error("keep-list permission must not be deleted")
	}
}

func TestPermissionTogglesOff(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	file := testutil.File("file", "report.pdf", "top", testutil.OwnerEmail)
	file.Permissions = append(file.Permissions,
		testutil.AnyonePermission("perm-link", domain.RoleViewer),
		testutil.UserPermission("perm-other", testutil.OtherEmail, domain.RoleEditor),
	)
	gw.Put(top)
	gw.Put(file)

	actions := allActions
	actions.PermissionsDeleteLink = false
	actions.PermissionsDeleteOtherUsers = false

	items, err := newBuilder(gw, actions).BuildPlans(
		context.Background(), []domain.Entry{top, file})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items with toggles off, got %v", actionsOf(items))
	}
}

func TestPermissionUnknownShapeIsFatal(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	file := testutil.File("file", "report.pdf", "top", testutil.OwnerEmail)
	file.Permissions = append(file.Permissions, domain.Permission{
		ID:   "perm-weird",
		Type: "unexpected",
		Role: domain.RoleViewer,
	})
	gw.Put(top)
	gw.Put(file)

	_, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top, file})
	if !errors.Is(err, domain.ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}
}

func TestPassOrdering(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	top := topFolder()
	sharedFolder := testutil.SharedFolder("shared", "Team Docs", "top", testutil.OtherEmail)
	sharedFile := testutil.SharedFile("file", "report.pdf", "shared", testutil.OtherEmail)
	sharedFile.Permissions = append(sharedFile.Permissions,
		testutil.AnyonePermission("perm-link", domain.RoleViewer))
	gw.Put(top)
	gw.Put(sharedFolder)
	gw.Put(sharedFile)

	items, err := newBuilder(gw, allActions).BuildPlans(
		context.Background(), []domain.Entry{top, sharedFolder, sharedFile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.Action{
		domain.ActionCopyFile,
		domain.ActionMoveEntry,
		domain.ActionDeletePermission,
	}
	got := actionsOf(items)
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("items = %v, want %v", got, want)
		}
	}
}
