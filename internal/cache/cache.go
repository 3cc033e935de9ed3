// Package cache implements the per-file two-slot configuration cache: the
// latest loaded snapshot and the snapshot currently applied for compilation
// and highlighting.
package cache

import (
	"sync"

	"go.lsp.dev/uri"

	"scriptconfig/internal/scripting"
)

// AppliedEntry pairs a file with its applied snapshot for derived-cache
// rebuilds.
type AppliedEntry struct {
	URI      uri.URI
	Snapshot *scripting.Snapshot
}

// ConfigurationCache is the per-file store of loaded and applied snapshots.
type ConfigurationCache interface {
	Get(u uri.URI) (*scripting.State, bool)
	SetLoaded(u uri.URI, snapshot *scripting.Snapshot)
	SetApplied(u uri.URI, snapshot *scripting.Snapshot)
	Remove(u uri.URI)
	Clear()
	AllApplied() []AppliedEntry
}

// MemoryCache is the in-memory ConfigurationCache. Reads take only an RLock
// so staleness checks stay cheap on hot paths.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[uri.URI]*scripting.State
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[uri.URI]*scripting.State)}
}

// Get returns the state for a file. The returned state is a copy; callers
// cannot mutate cache contents through it.
func (c *MemoryCache) Get(u uri.URI) (*scripting.State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	state, ok := c.entries[u]
	if !ok {
		return nil, false
	}
	copied := *state
	return &copied, true
}

// SetLoaded overwrites the loaded slot. The applied slot is never touched.
func (c *MemoryCache) SetLoaded(u uri.URI, snapshot *scripting.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state(u).Loaded = snapshot
}

// SetApplied overwrites the applied slot.
func (c *MemoryCache) SetApplied(u uri.URI, snapshot *scripting.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state(u).Applied = snapshot
}

// Remove drops the entry for a file.
func (c *MemoryCache) Remove(u uri.URI) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, u)
}

// Clear drops every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uri.URI]*scripting.State)
}

// AllApplied returns every file that currently has an applied snapshot.
func (c *MemoryCache) AllApplied() []AppliedEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]AppliedEntry, 0, len(c.entries))
	for u, state := range c.entries {
		if state.Applied != nil {
			out = append(out, AppliedEntry{URI: u, Snapshot: state.Applied})
		}
	}
	return out
}

// state returns the mutable entry for a file, creating it on first use.
// Callers must hold the write lock.
func (c *MemoryCache) state(u uri.URI) *scripting.State {
	state, ok := c.entries[u]
	if !ok {
		state = &scripting.State{}
		c.entries[u] = state
	}
	return state
}
