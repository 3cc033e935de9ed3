package roots

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.lsp.dev/uri"

	"scriptconfig/internal/cache"
	"scriptconfig/internal/common"
	"scriptconfig/internal/scripting"
)

// DefaultScopeCacheSize bounds the per-file scope memoization.
const DefaultScopeCacheSize = 128

// Source supplies the applied configurations the cache derives from.
type Source interface {
	AllApplied() []cache.AppliedEntry
}

// FileScope is the memoized per-file derived artifact: the applied
// configuration and its resolved class search scope.
type FileScope struct {
	Configuration   *scripting.Configuration
	ClassFilesScope Scope
}

// RootsCache is the lazily rebuilt aggregate view over every applied
// configuration of one provider. It is a read-derived view, never a source of
// truth: any applied-configuration change invalidates it wholesale and the
// next access rebuilds from Source. Per-file scopes are expensive (SDK and
// classpath resolution), so they are memoized in a bounded LRU that is purged
// on every invalidation.
type RootsCache struct {
	source     Source
	indexer    *Indexer
	generation atomic.Int64
	logger     *common.SafeLogger

	mu            sync.Mutex
	built         bool
	files         map[uri.URI]*scripting.Snapshot
	all           scripting.ClassRoots
	allClassScope Scope
	allSrcScope   Scope
	scopes        *lru.Cache[uri.URI, *FileScope]
}

// NewRootsCache creates a cache over the given source. capacity bounds the
// per-file scope memoization; values below 1 fall back to the default.
func NewRootsCache(source Source, indexer *Indexer, capacity int) *RootsCache {
	if capacity < 1 {
		capacity = DefaultScopeCacheSize
	}
	scopes, err := lru.New[uri.URI, *FileScope](capacity)
	if err != nil {
		// Only reachable with a non-positive capacity, which is guarded above.
		panic(err)
	}
	return &RootsCache{
		source:  source,
		indexer: indexer,
		scopes:  scopes,
		logger:  common.ScriptLogger,
	}
}

// Generation returns the current cache generation. Lock-free; hot path.
func (c *RootsCache) Generation() int64 {
	return c.generation.Load()
}

// Invalidate discards the derived view. The next access rebuilds it from the
// source, and index listeners are told (possibly batched by the indexer) that
// a rebuild occurred.
func (c *RootsCache) Invalidate() {
	c.invalidate(true)
}

// InvalidateSilently discards the derived view without notifying index
// listeners. Used when an applied configuration changed but every root it
// references is already known to the persisted roots store.
func (c *RootsCache) InvalidateSilently() {
	c.invalidate(false)
}

func (c *RootsCache) invalidate(notify bool) {
	c.mu.Lock()
	c.built = false
	c.files = nil
	c.scopes.Purge()
	gen := c.generation.Add(1)
	c.mu.Unlock()

	c.logger.Debug("Roots cache invalidated, generation %d", gen)
	if notify && c.indexer != nil {
		c.indexer.RootsChanged(gen)
	}
}

// Get returns the memoized configuration and class search scope for a file,
// computing and inserting them on first access. The second result is false
// when the file has no applied configuration.
func (c *RootsCache) Get(u uri.URI) (*FileScope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureBuilt()

	if fs, ok := c.scopes.Get(u); ok {
		return fs, true
	}

	snapshot, ok := c.files[u]
	if !ok || snapshot.Configuration == nil {
		return nil, false
	}

	fs := &FileScope{
		Configuration:   snapshot.Configuration,
		ClassFilesScope: ScopeFor(snapshot.Configuration),
	}
	c.scopes.Add(u, fs)
	return fs, true
}

// Contains reports whether the file has an applied configuration, without
// computing its scope.
func (c *RootsCache) Contains(u uri.URI) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureBuilt()
	_, ok := c.files[u]
	return ok
}

// ScriptSDKs returns every SDK referenced by an applied configuration.
func (c *RootsCache) ScriptSDKs() []scripting.SDK {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureBuilt()
	return c.all.SDKList()
}

// AllDependenciesClassFiles returns the union of all applied classpath roots.
func (c *RootsCache) AllDependenciesClassFiles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureBuilt()
	return c.all.ClassFileList()
}

// AllDependenciesSources returns the union of all applied source roots.
func (c *RootsCache) AllDependenciesSources() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureBuilt()
	return c.all.SourceFileList()
}

// AllDependenciesClassFilesScope returns the aggregate class search scope.
func (c *RootsCache) AllDependenciesClassFilesScope() Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureBuilt()
	return c.allClassScope
}

// AllDependenciesSourcesScope returns the aggregate source search scope.
func (c *RootsCache) AllDependenciesSourcesScope() Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureBuilt()
	return c.allSrcScope
}

// ensureBuilt rebuilds the aggregate view when stale. Callers must hold mu.
func (c *RootsCache) ensureBuilt() {
	if c.built {
		return
	}

	entries := c.source.AllApplied()
	files := make(map[uri.URI]*scripting.Snapshot, len(entries))
	all := scripting.NewClassRoots()
	for _, e := range entries {
		files[e.URI] = e.Snapshot
		if e.Snapshot.Configuration != nil {
			all.Union(e.Snapshot.Configuration.Roots())
		}
	}

	classPaths := all.ClassFileList()
	for _, sdk := range all.SDKList() {
		classPaths = append(classPaths, sdk.HomePath)
	}

	c.files = files
	c.all = all
	c.allClassScope = NewScope(classPaths...)
	c.allSrcScope = NewScope(all.SourceFileList()...)
	c.built = true
	c.logger.Debug("Rebuilt roots cache: %d files, %d class roots, %d source roots",
		len(files), len(all.ClassFiles), len(all.SourceFiles))
}
