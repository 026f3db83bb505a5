// Package editcache holds uncommitted row edits for the open import job.
//
// An entry exists for a row exactly while the user has an uncommitted change
// to it. Entries are removed by the caller once the change has been accepted
// by the staging service. Cache is not safe for concurrent use.
package editcache

import "github.com/ebotics/recon/internal/model"

// Cache maps stagingCheckId to the accumulated field overlay for that row.
type Cache struct {
	entries map[string]model.Patch
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]model.Patch)}
}

// Edit merges p into the entry for rowID, creating it if needed.
// An empty patch leaves the cache unchanged.
func (c *Cache) Edit(rowID string, p model.Patch) {
	if p.Empty() {
		return
	}
	c.entries[rowID] = c.entries[rowID].Merge(p)
}

// Get returns a copy of the entry for rowID.
func (c *Cache) Get(rowID string) (model.Patch, bool) {
	p, ok := c.entries[rowID]
	if !ok {
		return model.Patch{}, false
	}
	return p.Clone(), true
}

// Has reports whether rowID has uncommitted edits.
func (c *Cache) Has(rowID string) bool {
	_, ok := c.entries[rowID]
	return ok
}

// Len returns the number of rows with uncommitted edits.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Remove drops the entries for ids.
func (c *Cache) Remove(ids ...string) {
	for _, id := range ids {
		delete(c.entries, id)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries = make(map[string]model.Patch)
}

// Snapshot returns a deep copy of all entries.
func (c *Cache) Snapshot() map[string]model.Patch {
	out := make(map[string]model.Patch, len(c.entries))
	for id, p := range c.entries {
		out[id] = p.Clone()
	}
	return out
}
