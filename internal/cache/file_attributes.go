package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.lsp.dev/uri"

	"scriptconfig/internal/common"
	"scriptconfig/internal/scripting"
)

// FileAttributeStore persists one snapshot per script file, keyed by the
// fingerprint recorded at apply time. A fresh session can skip a full reload
// when the stored fingerprint still matches the file. Malformed or mismatched
// entries are treated as cache misses, never as errors.
type FileAttributeStore struct {
	dir    string
	mu     sync.Mutex
	logger *common.SafeLogger
}

// NewFileAttributeStore creates a store rooted at dir.
func NewFileAttributeStore(dir string) *FileAttributeStore {
	return &FileAttributeStore{dir: dir, logger: common.ScriptLogger}
}

// Load returns the persisted snapshot for a file, or false on any miss:
// no entry, unreadable entry or malformed JSON.
func (s *FileAttributeStore) Load(u uri.URI) (*scripting.Snapshot, bool) {
	data, err := os.ReadFile(s.entryPath(u))
	if err != nil {
		return nil, false
	}

	var snapshot scripting.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("Discarding malformed attribute entry for %s: %v", u, err)
		return nil, false
	}
	return &snapshot, true
}

// Save writes the snapshot through to disk atomically (temp file + rename).
func (s *FileAttributeStore) Save(u uri.URI, snapshot *scripting.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	path := s.entryPath(u)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create attribute directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		if rmErr := os.Remove(tempFile); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn("Failed to remove temp attribute file: %v", rmErr)
		}
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}
	return nil
}

// Remove drops the persisted entry for a file.
func (s *FileAttributeStore) Remove(u uri.URI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(s.entryPath(u))
}

func (s *FileAttributeStore) entryPath(u uri.URI) string {
	sum := sha256.Sum256([]byte(u))
	return filepath.Join(s.dir, "attributes", fmt.Sprintf("%x.json", sum[:16]))
}

// PersistentCache decorates a ConfigurationCache with write-through
// persistence of applied snapshots.
type PersistentCache struct {
	*MemoryCache
	store  *FileAttributeStore
	logger *common.SafeLogger
}

// NewPersistentCache wraps a fresh memory cache with the given durable store.
func NewPersistentCache(store *FileAttributeStore) *PersistentCache {
	return &PersistentCache{
		MemoryCache: NewMemoryCache(),
		store:       store,
		logger:      common.ScriptLogger,
	}
}

// SetApplied overwrites the applied slot and writes through to the durable
// side store. Persistence failures are logged, not surfaced: the store is an
// optimization, never the source of truth.
func (c *PersistentCache) SetApplied(u uri.URI, snapshot *scripting.Snapshot) {
	c.MemoryCache.SetApplied(u, snapshot)
	if err := c.store.Save(u, snapshot); err != nil {
		c.logger.Warn("Failed to persist applied configuration for %s: %v", u, err)
	}
}

// Remove drops both the in-memory entry and the persisted one.
func (c *PersistentCache) Remove(u uri.URI) {
	c.MemoryCache.Remove(u)
	c.store.Remove(u)
}
