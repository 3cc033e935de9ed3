package support

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"go.lsp.dev/uri"

	"scriptconfig/internal/cache"
	"scriptconfig/internal/common"
	"scriptconfig/internal/host"
	"scriptconfig/internal/roots"
	"scriptconfig/internal/rootstore"
	"scriptconfig/internal/scripting"
)

// GradleScriptModel is one entry of the batch the external build-tool
// importer pushes after a sync: the resolved model of a single build script.
type GradleScriptModel struct {
	File       string   `json:"file"`
	ClassPath  []string `json:"class_path"`
	SourcePath []string `json:"source_path"`
	JavaHome   string   `json:"java_home,omitempty"`
}

// GradleSupportConfig wires a GradleSupport's collaborators.
type GradleSupportConfig struct {
	Patterns    []string
	SDK         scripting.SDK
	RootStore   *rootstore.Store
	Indexer     *roots.Indexer
	Diagnostics host.DiagnosticsSink
	// RootsCapacity bounds the per-file scope memoization; 0 uses the default.
	RootsCapacity int
}

// GradleSupport is the build-tool-driven provider. It never resolves
// configurations itself: an external importer pushes complete model batches,
// and each batch atomically replaces the provider's entire configuration set.
type GradleSupport struct {
	patterns    []string
	sdk         scripting.SDK
	cache       *cache.MemoryCache
	rootsCache  *roots.RootsCache
	indexer     *roots.Indexer
	rootStore   *rootstore.Store
	diagnostics host.DiagnosticsSink
	logger      *common.SafeLogger

	mu       sync.Mutex
	imported bool
}

// NewGradleSupport creates the build-tool-driven provider.
func NewGradleSupport(cfg GradleSupportConfig) *GradleSupport {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"*.gradle.kts"}
	}
	g := &GradleSupport{
		patterns:    patterns,
		sdk:         cfg.SDK,
		cache:       cache.NewMemoryCache(),
		indexer:     common.MustCollaborator("indexer", cfg.Indexer, cfg.Indexer != nil),
		rootStore:   common.MustCollaborator("root store", cfg.RootStore, cfg.RootStore != nil),
		diagnostics: common.MustCollaborator("diagnostics sink", cfg.Diagnostics, cfg.Diagnostics != nil),
		logger:      common.GradleLogger,
	}
	g.rootsCache = roots.NewRootsCache(g.cache, g.indexer, cfg.RootsCapacity)
	return g
}

func (g *GradleSupport) Name() string { return "gradle" }

// IsRelated matches the file's base name against the provider's patterns.
func (g *GradleSupport) IsRelated(file host.ScriptFile) bool {
	base := filepath.Base(file.Path())
	for _, p := range g.patterns {
		if ok, err := filepath.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}

// Roots exposes the derived classpath roots cache.
func (g *GradleSupport) Roots() *roots.RootsCache { return g.rootsCache }

// GetOrLoadConfiguration returns the configuration imported for the file.
// Before the first import, or for files the importer did not cover, the
// result is nil with an informational diagnostic: loading is entirely
// importer-driven for this provider.
func (g *GradleSupport) GetOrLoadConfiguration(_ context.Context, file host.ScriptFile) *scripting.Configuration {
	u := file.URI()
	if state, ok := g.cache.Get(u); ok {
		return state.AppliedConfiguration()
	}

	g.diagnostics.Publish(u, scripting.Diagnostics([]scripting.Report{
		scripting.InfoReport(g.Name(), "script dependencies are not available until the build model is imported"),
	}))
	return nil
}

// EnsureUpToDate is a no-op: configurations only change when the importer
// pushes a new batch.
func (g *GradleSupport) EnsureUpToDate(context.Context, host.ScriptFile) {}

// ImportModels atomically replaces the provider's configurations with the
// given batch. Prior entries not covered by the batch are dropped, never
// merged. Exactly one index-rebuild notification is emitted per import.
func (g *GradleSupport) ImportModels(models []GradleScriptModel) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.logger.Info("Importing %d script models", len(models))

	imported := scripting.NewClassRoots()
	snapshots := make(map[uri.URI]*scripting.Snapshot, len(models))
	for _, model := range models {
		cfg := &scripting.Configuration{
			ClassPath:  model.ClassPath,
			SourcePath: model.SourcePath,
			SDK:        g.sdk,
			JavaHome:   model.JavaHome,
		}
		snapshots[common.FileURI(model.File)] = scripting.NewSnapshot(cfg, modelFingerprint(model), nil)
		imported.Union(cfg.Roots())
	}

	g.indexer.Transaction(func() {
		g.cache.Clear()
		for u, snapshot := range snapshots {
			g.cache.SetLoaded(u, snapshot)
			g.cache.SetApplied(u, snapshot)
			g.diagnostics.Publish(u, nil)
		}

		if !g.rootStore.ContainsAll(imported) {
			if err := g.rootStore.Save(imported); err != nil {
				g.logger.Warn("Failed to persist imported roots: %v", err)
			}
		}
		g.rootsCache.Invalidate()
	})

	g.imported = true
}

// HasImported reports whether at least one model batch arrived.
func (g *GradleSupport) HasImported() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.imported
}

// Remove drops the cached state for a removed file.
func (g *GradleSupport) Remove(u uri.URI) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache.Remove(u)
	g.rootsCache.Invalidate()
}

// Clear resets the provider's caches.
func (g *GradleSupport) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache.Clear()
	g.imported = false
	g.rootsCache.Invalidate()
}

// modelFingerprint derives the staleness fingerprint from the imported model
// itself: the model, not the script text, is the configuration input here.
func modelFingerprint(model GradleScriptModel) scripting.Fingerprint {
	return scripting.ComputeFingerprint(
		[]byte(strings.Join(model.ClassPath, "\n")+"\n"+strings.Join(model.SourcePath, "\n")),
		map[string]string{"java_home": model.JavaHome},
	)
}
