// Package support implements the scripting supports: provider-specific
// strategies that own configuration caching, loading and reconciliation for
// the subset of script files they claim.
package support

import (
	"context"

	"go.lsp.dev/uri"

	"scriptconfig/internal/host"
	"scriptconfig/internal/roots"
	"scriptconfig/internal/scripting"
)

// Support is the capability interface every provider implements. The
// composite manager routes each file to exactly one Support via IsRelated.
type Support interface {
	Name() string

	// IsRelated reports whether this provider claims the file. Evaluated on
	// every routed call; must be a cheap pattern check, never I/O.
	IsRelated(file host.ScriptFile) bool

	// GetOrLoadConfiguration returns the configuration in effect for the
	// file, loading synchronously when nothing usable is cached yet. A nil
	// result means resolution failed; diagnostics were recorded.
	GetOrLoadConfiguration(ctx context.Context, file host.ScriptFile) *scripting.Configuration

	// EnsureUpToDate checks staleness and, when the cached configuration is
	// out of date, schedules a reload under the provider's background policy.
	EnsureUpToDate(ctx context.Context, file host.ScriptFile)

	// Roots exposes the provider's derived classpath roots cache.
	Roots() *roots.RootsCache

	// Remove drops all cached state for a deleted file.
	Remove(u uri.URI)

	// Clear resets every cache the provider owns, e.g. on a
	// project-roots-changed event.
	Clear()
}

// Policy is the runtime reload policy shared by providers.
type Policy struct {
	// AutoReload applies new configurations without asking the user.
	AutoReload bool
	// TestMode forces synchronous loads and auto-application for
	// deterministic, non-interactive runs.
	TestMode bool
}
