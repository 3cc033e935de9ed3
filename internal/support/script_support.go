package support

import (
	"context"
	"path/filepath"
	"sync"

	"go.lsp.dev/uri"

	"scriptconfig/internal/cache"
	"scriptconfig/internal/common"
	"scriptconfig/internal/executor"
	"scriptconfig/internal/host"
	"scriptconfig/internal/loader"
	"scriptconfig/internal/roots"
	"scriptconfig/internal/rootstore"
	"scriptconfig/internal/scripting"
)

// ScriptSupportConfig wires a ScriptSupport's collaborators.
type ScriptSupportConfig struct {
	Name     string
	Patterns []string
	// Environment feeds the staleness fingerprint alongside file content.
	Environment map[string]string

	Cache      cache.ConfigurationCache
	RootStore  *rootstore.Store
	Loaders    []loader.Loader
	Background *executor.BackgroundExecutor
	Indexer    *roots.Indexer

	Files       host.FileStore
	Highlighter host.Highlighter
	Diagnostics host.DiagnosticsSink
	Notifier    host.Notifier
	UI          host.UIExecutor

	Policy func() Policy
	// RootsCapacity bounds the per-file scope memoization; 0 uses the default.
	RootsCapacity int
}

// ScriptSupport is the default provider: a two-slot configuration cache, an
// ordered loader chain with background scheduling, and a derived roots cache,
// reconciled under one provider-wide lock.
type ScriptSupport struct {
	name        string
	patterns    []string
	environment map[string]string

	cache      cache.ConfigurationCache
	rootStore  *rootstore.Store
	chain      *loader.Chain
	rootsCache *roots.RootsCache
	indexer    *roots.Indexer

	files       host.FileStore
	highlighter host.Highlighter
	diagnostics host.DiagnosticsSink
	notifier    host.Notifier
	ui          host.UIExecutor

	policy func() Policy
	logger *common.SafeLogger

	// applyMu serializes every reconciliation of this provider. Coarse by
	// design: applies mutate the shared derived roots cache, and they are
	// rare next to reads.
	applyMu sync.Mutex
}

// NewScriptSupport creates the default provider. Missing collaborators are
// programming errors and panic.
func NewScriptSupport(cfg ScriptSupportConfig) *ScriptSupport {
	s := &ScriptSupport{
		name:        cfg.Name,
		patterns:    cfg.Patterns,
		environment: cfg.Environment,
		cache:       common.MustCollaborator("cache", cfg.Cache, cfg.Cache != nil),
		rootStore:   common.MustCollaborator("root store", cfg.RootStore, cfg.RootStore != nil),
		indexer:     common.MustCollaborator("indexer", cfg.Indexer, cfg.Indexer != nil),
		files:       common.MustCollaborator("file store", cfg.Files, cfg.Files != nil),
		highlighter: common.MustCollaborator("highlighter", cfg.Highlighter, cfg.Highlighter != nil),
		diagnostics: common.MustCollaborator("diagnostics sink", cfg.Diagnostics, cfg.Diagnostics != nil),
		notifier:    common.MustCollaborator("notifier", cfg.Notifier, cfg.Notifier != nil),
		ui:          common.MustCollaborator("ui executor", cfg.UI, cfg.UI != nil),
		policy:      cfg.Policy,
		logger:      common.ScriptLogger,
	}
	if s.policy == nil {
		s.policy = func() Policy { return Policy{} }
	}

	s.rootsCache = roots.NewRootsCache(s.cache, s.indexer, cfg.RootsCapacity)
	s.chain = loader.NewChain(loader.ChainConfig{
		Loaders:     cfg.Loaders,
		Background:  common.MustCollaborator("background executor", cfg.Background, cfg.Background != nil),
		Notifier:    s.notifier,
		AutoReload:  func() bool { return s.policy().AutoReload },
		UpToDate:    s.isUpToDate,
		Fingerprint: s.fingerprintFor,
		Deliver:     s.suggestOrSave,
	})
	return s
}

func (s *ScriptSupport) Name() string { return s.name }

// IsRelated matches the file's base name against the provider's patterns.
func (s *ScriptSupport) IsRelated(file host.ScriptFile) bool {
	base := filepath.Base(file.Path())
	for _, p := range s.patterns {
		if ok, err := filepath.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}

// Roots exposes the derived classpath roots cache.
func (s *ScriptSupport) Roots() *roots.RootsCache { return s.rootsCache }

// GetOrLoadConfiguration returns the configuration in effect for the file.
// When nothing usable is cached, the first load runs synchronously through
// the full chain so the editor has something to show immediately.
func (s *ScriptSupport) GetOrLoadConfiguration(ctx context.Context, file host.ScriptFile) *scripting.Configuration {
	u := file.URI()
	fp := s.fingerprintFor(file)

	if state, ok := s.cache.Get(u); ok && state.IsUpToDate(fp) {
		if state.Applied == nil {
			// A preview left a current loaded snapshot that was never
			// applied. The caller wants the configuration in effect, so
			// promote it instead of serving a phantom.
			s.promoteLoaded(u, fp)
			state, _ = s.cache.Get(u)
		}
		return state.AppliedConfiguration()
	}

	opts := loader.Options{FirstLoad: s.isFirstLoad(u)}
	// First loads and test runs take the narrow synchronous path.
	opts.ForceSync = opts.FirstLoad || s.policy().TestMode
	s.chain.Reload(ctx, file, fp, opts)

	if state, ok := s.cache.Get(u); ok {
		return state.AppliedConfiguration()
	}
	return nil
}

// PreviewConfiguration loads the file's would-be configuration without
// applying it, for callers like inspections that must not trigger real
// application.
func (s *ScriptSupport) PreviewConfiguration(ctx context.Context, file host.ScriptFile) *scripting.Configuration {
	u := file.URI()
	fp := s.fingerprintFor(file)

	if state, ok := s.cache.Get(u); ok && state.IsUpToDate(fp) {
		return state.AppliedConfiguration()
	}

	s.chain.Reload(ctx, file, fp, loader.Options{PreviewOnly: true, ForceSync: true})

	if state, ok := s.cache.Get(u); ok && state.Loaded != nil {
		return state.Loaded.Configuration
	}
	return nil
}

// EnsureUpToDate triggers a reload when the cached configuration is stale.
// Calling it twice without an intervening change is a no-op the second time.
func (s *ScriptSupport) EnsureUpToDate(ctx context.Context, file host.ScriptFile) {
	u := file.URI()
	fp := s.fingerprintFor(file)

	if state, ok := s.cache.Get(u); ok && state.IsUpToDate(fp) {
		return
	}

	opts := loader.Options{
		FirstLoad: s.isFirstLoad(u),
		Postponed: true,
		ForceSync: s.policy().TestMode,
	}
	s.chain.Reload(ctx, file, fp, opts)
}

// Remove drops all cached state for a removed file.
func (s *ScriptSupport) Remove(u uri.URI) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.cache.Remove(u)
	s.notifier.Hide(u)
	s.rootsCache.Invalidate()
}

// Clear resets the provider's caches, e.g. after a project-roots change.
func (s *ScriptSupport) Clear() {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.cache.Clear()
	s.rootsCache.Invalidate()
}

// suggestOrSave is the reconciliation step for every completed load: record
// the loaded snapshot and either apply it or ask the user. The affordance is
// surfaced after the apply lock is released; notifiers may invoke accept on
// the calling goroutine, and accept re-acquires the lock.
func (s *ScriptSupport) suggestOrSave(file host.ScriptFile, snapshot *scripting.Snapshot, opts loader.Options) {
	if !s.reconcile(file, snapshot, opts) {
		return
	}

	u := file.URI()
	// Pending user decision: loaded and applied stay divergent until the
	// affordance is accepted. Only the first acceptance applies.
	var once sync.Once
	s.notifier.ShowReloadAffordance(u, func() {
		once.Do(func() {
			s.applyMu.Lock()
			defer s.applyMu.Unlock()
			s.indexer.Transaction(func() {
				s.apply(u, snapshot)
			})
			s.notifier.Hide(u)
		})
	})
}

// reconcile records the load result under the provider-wide apply lock and
// applies it when policy allows. It returns true when the result is left
// pending and the user must be asked.
func (s *ScriptSupport) reconcile(file host.ScriptFile, snapshot *scripting.Snapshot, opts loader.Options) bool {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	u := file.URI()

	// A background load may finish after the file changed again (or changed
	// back). Accept only results that still describe the file's current
	// state.
	if current := s.fingerprintFor(file); snapshot.Fingerprint != current {
		s.logger.Debug("Discarding stale load result for %s", u)
		return false
	}

	s.cache.SetLoaded(u, snapshot)
	s.publish(u, snapshot.Reports)

	if opts.PreviewOnly {
		return false
	}

	// Resolution failed: keep the last-known-good applied configuration.
	if snapshot.Configuration == nil {
		return false
	}

	state, _ := s.cache.Get(u)
	var applied *scripting.Snapshot
	if state != nil {
		applied = state.Applied
	}

	// Equivalent configuration: refresh diagnostics only, no reindexing or
	// highlighting churn.
	if applied != nil && applied.Configuration.Similar(snapshot.Configuration) {
		s.logger.Debug("New configuration for %s is similar to the applied one", u)
		return false
	}

	policy := s.policy()
	autoApply := applied == nil || opts.SkipNotification || policy.AutoReload || policy.TestMode
	if autoApply {
		s.indexer.Transaction(func() {
			s.apply(u, snapshot)
		})
		s.notifier.Hide(u)
		return false
	}

	return true
}

// promoteLoaded applies a loaded-only snapshot that still matches the file's
// current fingerprint. First-load semantics: there is nothing applied yet, so
// nothing to ask the user about.
func (s *ScriptSupport) promoteLoaded(u uri.URI, fp scripting.Fingerprint) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	state, ok := s.cache.Get(u)
	if !ok || state.Applied != nil {
		return
	}
	snapshot := state.Loaded
	if snapshot == nil || snapshot.Configuration == nil || snapshot.Fingerprint != fp {
		return
	}
	s.indexer.Transaction(func() {
		s.apply(u, snapshot)
	})
}

// apply makes the snapshot the configuration in effect. Callers hold applyMu.
func (s *ScriptSupport) apply(u uri.URI, snapshot *scripting.Snapshot) {
	s.cache.SetApplied(u, snapshot)

	newRoots := snapshot.Configuration.Roots()
	notifyIndex := !s.rootStore.ContainsAll(newRoots)
	if notifyIndex {
		if err := s.rootStore.Save(newRoots); err != nil {
			s.logger.Warn("Failed to persist roots for %s: %v", u, err)
		}
	}
	// The derived cache always goes stale on apply; index listeners only
	// need to hear about it when genuinely new roots appeared.
	if notifyIndex {
		s.rootsCache.Invalidate()
	} else {
		s.rootsCache.InvalidateSilently()
	}

	if s.files.IsOpen(u) {
		s.ui.Invoke(func() {
			s.highlighter.Refresh(u)
		})
	}
	s.logger.Info("Applied configuration for %s (%d classpath roots)", u, len(snapshot.Configuration.ClassPath))
}

func (s *ScriptSupport) publish(u uri.URI, reports []scripting.Report) {
	s.diagnostics.Publish(u, scripting.Diagnostics(reports))
}

func (s *ScriptSupport) isFirstLoad(u uri.URI) bool {
	state, ok := s.cache.Get(u)
	return !ok || state.Applied == nil
}

func (s *ScriptSupport) isUpToDate(file host.ScriptFile) bool {
	state, ok := s.cache.Get(file.URI())
	return ok && state.IsUpToDate(s.fingerprintFor(file))
}

func (s *ScriptSupport) fingerprintFor(file host.ScriptFile) scripting.Fingerprint {
	content, err := file.Content()
	if err != nil {
		content = nil
	}
	return scripting.ComputeFingerprint(content, s.environment)
}
