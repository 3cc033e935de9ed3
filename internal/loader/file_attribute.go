package loader

import (
	"context"

	"scriptconfig/internal/cache"
	"scriptconfig/internal/common"
	"scriptconfig/internal/host"
	"scriptconfig/internal/scripting"
)

// FileAttributeLoader answers from the per-file persisted snapshot written on
// previous applies. It only hits when the stored fingerprint still matches
// the file's current fingerprint; anything else is a miss that falls through
// to full reconstruction.
type FileAttributeLoader struct {
	store  *cache.FileAttributeStore
	logger *common.SafeLogger
}

// NewFileAttributeLoader creates a loader over the given store.
func NewFileAttributeLoader(store *cache.FileAttributeStore) *FileAttributeLoader {
	return &FileAttributeLoader{store: store, logger: common.ScriptLogger}
}

func (l *FileAttributeLoader) Name() string { return "file-attributes" }

func (l *FileAttributeLoader) MayLoadInBackground() bool { return false }

func (l *FileAttributeLoader) Applicable(host.ScriptFile) bool { return true }

func (l *FileAttributeLoader) Load(_ context.Context, file host.ScriptFile, fp scripting.Fingerprint) (*scripting.Snapshot, bool) {
	snapshot, ok := l.store.Load(file.URI())
	if !ok {
		return nil, false
	}
	if snapshot.Fingerprint != fp {
		l.logger.Debug("Attribute snapshot for %s is stale, falling through", file.URI())
		return nil, false
	}
	if snapshot.Configuration == nil {
		return nil, false
	}
	l.logger.Debug("Restored configuration for %s from file attributes", file.URI())
	return snapshot, true
}
