package pairing

import (
	"context"
	"errors"
	"testing"

	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/gateway"
	"github.com/Ning0612/Drivemover/internal/testutil"
)

func newResolver(gw gateway.Gateway) *Resolver {
	return NewResolver(gw, testutil.Account("top"))
}

func TestFindPairForUnownedOriginal(t *testing.T) {
	gw := gateway.NewMemoryGateway()

	original := testutil.SharedFile("orig", "report.pdf", "top", testutil.OtherEmail)
	original.Properties[domain.PropKeyCopyID] = "copy"
	gw.Put(original)

	copied := testutil.File("copy", "report.pdf", "top", testutil.OwnerEmail)
	copied.Properties[domain.PropKeyOriginalID] = "orig"
	gw.Put(copied)

	pair, err := newResolver(gw).FindPair(context.Background(), original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair == nil || pair.ID != "copy" {
		t.Fatalf("expected pair 'copy', got %v", pair)
	}
}

func TestFindPairForOwnedCopy(t *testing.T) {
	gw := gateway.NewMemoryGateway()

	original := testutil.SharedFile("orig", "report.pdf", "top", testutil.OtherEmail)
	original.Properties[domain.PropKeyCopyID] = "copy"
	gw.Put(original)

	copied := testutil.File("copy", "report.pdf", "top", testutil.OwnerEmail)
	copied.Properties[domain.PropKeyOriginalID] = "orig"
	gw.Put(copied)

	pair, err := newResolver(gw).FindPair(context.Background(), copied)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair == nil || pair.ID != "orig" {
		t.Fatalf("expected pair 'orig', got %v", pair)
	}
}

func TestFindPairNone(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	entry := testutil.SharedFile("orig", "report.pdf", "top", testutil.OtherEmail)
	gw.Put(entry)

	pair, err := newResolver(gw).FindPair(context.Background(), entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair != nil {
		t.Fatalf("expected no pair, got %v", pair)
	}
}

func TestFindPairAmbiguousMatch(t *testing.T) {
	gw := gateway.NewMemoryGateway()

	original := testutil.SharedFile("orig", "report.pdf", "top", testutil.OtherEmail)
	original.Properties[domain.PropKeyCopyID] = "copy-a"
	gw.Put(original)

	for _, id := range []string{"copy-a", "copy-b"} {
		copied := testutil.File(id, "report.pdf", "top", testutil.OwnerEmail)
		copied.Properties[domain.PropKeyOriginalID] = "orig"
		gw.Put(copied)
	}

	_, err := newResolver(gw).FindPair(context.Background(), original)
	if !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity for ambiguous match, got %v", err)
	}
}

func TestFindPairBackReferenceMismatch(t *testing.T) {
	gw := gateway.NewMemoryGateway()

	// the original claims a different copy than the one pointing at it
	original := testutil.SharedFile("orig", "report.pdf", "top", testutil.OtherEmail)
	original.Properties[domain.PropKeyCopyID] = "someone-else"
	gw.Put(original)

	copied := testutil.File("copy", "report.pdf", "top", testutil.OwnerEmail)
	copied.Properties[domain.PropKeyOriginalID] = "orig"
	gw.Put(copied)

	_, err := newResolver(gw).FindPair(context.Background(), original)
	if !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity for back-reference mismatch, got %v", err)
	}
}

func TestFindPairRequiresPersonalAccount(t *testing.T) {
	gw := gateway.NewMemoryGateway()
	entry := testutil.File("file", "report.pdf", "top", testutil.OwnerEmail)
	gw.Put(entry)

	resolver := NewResolver(gw, domain.Account{
		Type:        domain.AccountBusiness,
		DriveID:     "drive-1",
		AccountID:   "example.com",
		TopFolderID: "top",
	})

	if _, err := resolver.FindPair(context.Background(), entry); err == nil {
		t.Fatal("expected error for business account")
	}
}
