// Package rootstore persists the aggregated dependency roots across IDE
// sessions. The store is purely an optimization: when a newly applied
// configuration only references roots the store already knows, the expensive
// index rebuild can be skipped. It is never consulted as a source of truth.
package rootstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"scriptconfig/internal/common"
	"scriptconfig/internal/scripting"
)

type rootsFile struct {
	ClassFiles  []string        `json:"class_files"`
	SourceFiles []string        `json:"source_files"`
	SDKs        []scripting.SDK `json:"sdks"`
}

// Store is a durable snapshot of known dependency roots.
type Store struct {
	path   string
	mu     sync.RWMutex
	known  scripting.ClassRoots
	logger *common.SafeLogger
}

// Open loads the store at path. A missing or malformed file yields an empty
// store: corruption is cache-miss semantics, not a failure.
func Open(path string) *Store {
	s := &Store{
		path:   path,
		known:  scripting.NewClassRoots(),
		logger: common.ScriptLogger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var file rootsFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.logger.Warn("Discarding malformed roots store %s: %v", path, err)
		return s
	}

	s.known.AddClassFiles(file.ClassFiles...)
	s.known.AddSourceFiles(file.SourceFiles...)
	s.known.AddSDKs(file.SDKs...)
	return s
}

// ContainsAll reports whether every given root is already known.
func (s *Store) ContainsAll(roots scripting.ClassRoots) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.known.ContainsAll(roots)
}

// Save merges the given roots into the known set and writes the result to
// disk atomically.
func (s *Store) Save(roots scripting.ClassRoots) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.known.Union(roots)

	data, err := json.MarshalIndent(rootsFile{
		ClassFiles:  s.known.ClassFileList(),
		SourceFiles: s.known.SourceFileList(),
		SDKs:        s.known.SDKList(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal roots: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create roots directory: %w", err)
	}

	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write roots store: %w", err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		if rmErr := os.Remove(tempFile); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn("Failed to remove temp roots file: %v", rmErr)
		}
		return fmt.Errorf("failed to rename roots store: %w", err)
	}
	return nil
}
