package pairing

import (
	"context"
	"fmt"

	"github.com/Ning0612/Drivemover/internal/domain"
	"github.com/Ning0612/Drivemover/internal/gateway"
)

// Finder resolves the paired counterpart of an entry
type Finder interface {
	// FindPair returns the owned copy of an unowned original, or the
	// unowned original of an owned copy. Returns nil if no pair exists.
	FindPair(ctx context.Context, entry domain.Entry) (*domain.Entry, error)
}

// Resolver finds pairs through the remote property-equality query.
// Pairing is the only mechanism preventing duplicate copies across repeated
// runs, so any ambiguity here is fatal rather than retried.
type Resolver struct {
	gw      gateway.Gateway
	account domain.Account
}

// NewResolver creates a pairing resolver for the given account
func NewResolver(gw gateway.Gateway, account domain.Account) *Resolver {
	return &Resolver{gw: gw, account: account}
}

// FindPair implements Finder.
//
// For an owned entry (a possible copy), it searches for an unowned original
// whose copy-id property names this entry; for an unowned entry, it searches
// for an owned copy whose original-id property names this entry. More than
// one match, or a found pair whose reciprocal link does not hold, is an
// integrity violation.
func (r *Resolver) FindPair(ctx context.Context, entry domain.Entry) (*domain.Entry, error) {
	if r.account.Type != domain.AccountPersonal {
		return nil, fmt.Errorf("entry pairs only work in '%s' accounts, not '%s'",
			domain.AccountPersonal, r.account.Type)
	}

	owned, err := entry.IsOwnedBy(r.account.AccountID)
	if err != nil {
		return nil, err
	}

	// propKey is the property the pair carries naming this entry;
	// pairKey is the property this entry carries naming the pair.
	var propKey, pairKey string
	if owned {
		propKey = domain.PropKeyCopyID
		pairKey = domain.PropKeyOriginalID
	} else {
		propKey = domain.PropKeyOriginalID
		pairKey = domain.PropKeyCopyID
	}

	matches, err := r.gw.FindByProperty(ctx, propKey, entry.ID)
	if err != nil {
		return nil, err
	}

	if len(matches) > 1 {
		return nil, fmt.Errorf("%w: more than one match for property '%s=%s'",
			domain.ErrIntegrity, propKey, entry.ID)
	}
	if len(matches) < 1 {
		return nil, nil
	}

	pair := matches[0]

	expectedPairID := entry.Property(pairKey)
	if expectedPairID != pair.ID {
		return nil, fmt.Errorf(
			"%w: found pair does not have the expected property; entry %s, pair %s, expected '%s=%s', actual '%s=%s'",
			domain.ErrIntegrity, entry, pair, pairKey, expectedPairID, pairKey, pair.ID)
	}

	return &pair, nil
}

// Compile-time interface check
var _ Finder = (*Resolver)(nil)
