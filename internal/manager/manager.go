// Package manager routes per-file operations to the one scripting support
// claiming the file and aggregates whole-project queries across every
// registered support.
package manager

import (
	"context"
	"sort"

	"go.lsp.dev/uri"

	"scriptconfig/internal/common"
	"scriptconfig/internal/host"
	"scriptconfig/internal/roots"
	"scriptconfig/internal/scripting"
	"scriptconfig/internal/support"
)

// CompositeManager dispatches to registered supports in registration order;
// the first support whose IsRelated matches owns the file. The partition is
// expected to be disjoint in practice; first match wins when it is not.
type CompositeManager struct {
	supports []support.Support
	logger   *common.SafeLogger
}

// NewCompositeManager creates a manager over the given supports, in priority
// order.
func NewCompositeManager(supports ...support.Support) *CompositeManager {
	return &CompositeManager{supports: supports, logger: common.ScriptLogger}
}

// Register appends a support with lower priority than all existing ones.
func (m *CompositeManager) Register(s support.Support) {
	m.supports = append(m.supports, s)
}

// SupportFor returns the support claiming the file, if any.
func (m *CompositeManager) SupportFor(file host.ScriptFile) (support.Support, bool) {
	for _, s := range m.supports {
		if s.IsRelated(file) {
			return s, true
		}
	}
	return nil, false
}

// GetOrLoadConfiguration routes to the owning support. Files no support
// claims resolve to nil.
func (m *CompositeManager) GetOrLoadConfiguration(ctx context.Context, file host.ScriptFile) *scripting.Configuration {
	s, ok := m.SupportFor(file)
	if !ok {
		m.logger.Debug("No scripting support claims %s", file.URI())
		return nil
	}
	return s.GetOrLoadConfiguration(ctx, file)
}

// EnsureUpToDate routes to the owning support; a no-op for unclaimed files.
func (m *CompositeManager) EnsureUpToDate(ctx context.Context, file host.ScriptFile) {
	if s, ok := m.SupportFor(file); ok {
		s.EnsureUpToDate(ctx, file)
	}
}

// GetScriptClassFilesScope returns the memoized class search scope for a
// file from its owning support's roots cache.
func (m *CompositeManager) GetScriptClassFilesScope(file host.ScriptFile) (roots.Scope, bool) {
	s, ok := m.SupportFor(file)
	if !ok {
		return roots.NewScope(), false
	}
	fs, ok := s.Roots().Get(file.URI())
	if !ok {
		return roots.NewScope(), false
	}
	return fs.ClassFilesScope, true
}

// GetAllScriptsDependenciesClassFiles unions the dependency class file roots
// of every support.
func (m *CompositeManager) GetAllScriptsDependenciesClassFiles() []string {
	merged := make(map[string]struct{})
	for _, s := range m.supports {
		for _, p := range s.Roots().AllDependenciesClassFiles() {
			merged[p] = struct{}{}
		}
	}
	return sortedSet(merged)
}

// GetAllScriptsDependenciesSources unions the dependency source roots of
// every support.
func (m *CompositeManager) GetAllScriptsDependenciesSources() []string {
	merged := make(map[string]struct{})
	for _, s := range m.supports {
		for _, p := range s.Roots().AllDependenciesSources() {
			merged[p] = struct{}{}
		}
	}
	return sortedSet(merged)
}

// GetScriptSDKs unions the SDKs referenced by every support.
func (m *CompositeManager) GetScriptSDKs() []scripting.SDK {
	merged := make(map[scripting.SDK]struct{})
	for _, s := range m.supports {
		for _, sdk := range s.Roots().ScriptSDKs() {
			merged[sdk] = struct{}{}
		}
	}
	out := make([]scripting.SDK, 0, len(merged))
	for sdk := range merged {
		out = append(out, sdk)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].HomePath < out[j].HomePath
	})
	return out
}

// FileRemoved drops the file's cached state in its owning support.
func (m *CompositeManager) FileRemoved(file host.ScriptFile) {
	if s, ok := m.SupportFor(file); ok {
		s.Remove(file.URI())
	}
}

// RemoveByURI drops cached state for a URI in every support. Used when the
// file is already gone and ownership can no longer be decided by pattern.
func (m *CompositeManager) RemoveByURI(u uri.URI) {
	for _, s := range m.supports {
		s.Remove(u)
	}
}

// ProjectRootsChanged clears every support's caches.
func (m *CompositeManager) ProjectRootsChanged() {
	m.logger.Info("Project roots changed, clearing all script configuration caches")
	for _, s := range m.supports {
		s.Clear()
	}
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
