package cache

import (
	"fmt"

	"github.com/Ning0612/Drivemover/internal/domain"
)

// EntryPathCache holds the entries visited so far, keyed by id, so the
// ancestor chain of any visited entry can be rebuilt without re-fetching.
// The traversal must visit parents before children; the cache does not
// enforce that ordering, it only reports a missing ancestor as an error.
type EntryPathCache struct {
	topFolderID string
	entries     map[string]domain.Entry
}

// New creates an empty cache rooted at the given top folder id
func New(topFolderID string) *EntryPathCache {
	return &EntryPathCache{
		topFolderID: topFolderID,
		entries:     make(map[string]domain.Entry),
	}
}

// TopFolderID returns the designated root id
func (c *EntryPathCache) TopFolderID() string {
	return c.topFolderID
}

// Add stores an entry, replacing any previous entry with the same id
func (c *EntryPathCache) Add(entry domain.Entry) {
	c.entries[entry.ID] = entry
}

// Get returns the cached entry with the given id
func (c *EntryPathCache) Get(id string) (domain.Entry, bool) {
	entry, ok := c.entries[id]
	return entry, ok
}

// Delete removes an entry from the cache
func (c *EntryPathCache) Delete(id string) {
	delete(c.entries, id)
}

// Len returns the number of cached entries
func (c *EntryPathCache) Len() int {
	return len(c.entries)
}

// Path walks parent links from the given entry up to the top folder and
// returns the chain in root-to-entry order. Any ancestor missing from the
// cache is an error.
func (c *EntryPathCache) Path(id string) ([]domain.Entry, error) {
	var chain []domain.Entry
	currentID := id
	for {
		entry, ok := c.entries[currentID]
		if !ok {
			return nil, fmt.Errorf("%w: entry id '%s'", domain.ErrCacheMiss, currentID)
		}

		chain = append(chain, entry)

		if entry.ID == c.topFolderID {
			break
		}
		currentID = entry.ParentID
	}

	// reverse to root-to-entry order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
