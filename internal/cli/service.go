package cli

import (
	"fmt"
	"path/filepath"

	"scriptconfig/internal/cache"
	"scriptconfig/internal/config"
	"scriptconfig/internal/executor"
	"scriptconfig/internal/host"
	"scriptconfig/internal/loader"
	"scriptconfig/internal/manager"
	"scriptconfig/internal/roots"
	"scriptconfig/internal/rootstore"
	"scriptconfig/internal/scripting"
	"scriptconfig/internal/support"
)

// service bundles a fully wired composite manager for CLI use.
type service struct {
	manager    *manager.CompositeManager
	gradle     *support.GradleSupport
	background *executor.BackgroundExecutor
}

// newService wires the default and Gradle supports over the local file
// system using logging host collaborators.
func newService(cfg *config.Config) *service {
	sdk := scripting.SDK{Name: cfg.SDKName, HomePath: cfg.SDKHome}
	attrStore := cache.NewFileAttributeStore(cfg.StoragePath)
	rootStore := rootstore.Open(filepath.Join(cfg.StoragePath, "roots.json"))
	indexer := roots.NewIndexer(host.LogIndexListener{})
	background := executor.NewBackgroundExecutor()

	environment := map[string]string{
		"sdk_home": cfg.SDKHome,
	}
	for i, dir := range cfg.LibDirs {
		environment[fmt.Sprintf("lib_dir_%d", i)] = dir
	}

	scriptSupport := support.NewScriptSupport(support.ScriptSupportConfig{
		Name:        "default",
		Patterns:    cfg.ScriptPatterns,
		Environment: environment,
		Cache:       cache.NewPersistentCache(attrStore),
		RootStore:   rootStore,
		Loaders: []loader.Loader{
			loader.NewOutsiderFileLoader(cfg.ProjectRoot, sdk),
			loader.NewFileAttributeLoader(attrStore),
			loader.NewCompilerLoader(newLocalResolver(cfg.LibDirs, sdk)),
		},
		Background:    background,
		Indexer:       indexer,
		Files:         host.LocalFileStore{},
		Highlighter:   host.LogHighlighter{},
		Diagnostics:   host.LogDiagnostics{},
		Notifier:      host.LogNotifier{AutoAccept: true},
		UI:            executor.SyncUI{},
		Policy:        func() support.Policy { return support.Policy{AutoReload: cfg.AutoReload} },
		RootsCapacity: cfg.RootsCacheSize,
	})

	gradleSupport := support.NewGradleSupport(support.GradleSupportConfig{
		Patterns:      cfg.GradlePatterns,
		SDK:           sdk,
		RootStore:     rootStore,
		Indexer:       indexer,
		Diagnostics:   host.LogDiagnostics{},
		RootsCapacity: cfg.RootsCacheSize,
	})

	// Gradle first: its patterns are the more specific ones.
	return &service{
		manager:    manager.NewCompositeManager(gradleSupport, scriptSupport),
		gradle:     gradleSupport,
		background: background,
	}
}

// close drains outstanding background work.
func (s *service) close() {
	s.background.Stop()
}
