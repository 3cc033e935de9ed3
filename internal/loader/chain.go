package loader

import (
	"context"

	"scriptconfig/internal/common"
	"scriptconfig/internal/executor"
	"scriptconfig/internal/host"
	"scriptconfig/internal/scripting"
)

// DeliverFunc hands a completed load result to the owning provider's
// reconciliation step.
type DeliverFunc func(file host.ScriptFile, snapshot *scripting.Snapshot, opts Options)

// Chain runs an ordered list of loaders and decides, per out-of-date file,
// between synchronous loading, background loading and a deferred user action.
type Chain struct {
	loaders     []Loader
	background  *executor.BackgroundExecutor
	notifier    host.Notifier
	autoReload  func() bool
	upToDate    func(file host.ScriptFile) bool
	fingerprint func(file host.ScriptFile) scripting.Fingerprint
	deliver     DeliverFunc
	logger      *common.SafeLogger
}

// ChainConfig wires a Chain's collaborators.
type ChainConfig struct {
	Loaders     []Loader
	Background  *executor.BackgroundExecutor
	Notifier    host.Notifier
	AutoReload  func() bool
	UpToDate    func(file host.ScriptFile) bool
	Fingerprint func(file host.ScriptFile) scripting.Fingerprint
	Deliver     DeliverFunc
}

// NewChain creates a loader chain.
func NewChain(cfg ChainConfig) *Chain {
	return &Chain{
		loaders:     cfg.Loaders,
		background:  cfg.Background,
		notifier:    cfg.Notifier,
		autoReload:  cfg.AutoReload,
		upToDate:    cfg.UpToDate,
		fingerprint: cfg.Fingerprint,
		deliver:     cfg.Deliver,
		logger:      common.ScriptLogger,
	}
}

// Reload runs the chain for an out-of-date file. It returns true when a
// result was produced and delivered on the calling goroutine; false means the
// load was scheduled in the background or deferred behind a user affordance.
func (c *Chain) Reload(ctx context.Context, file host.ScriptFile, fp scripting.Fingerprint, opts Options) bool {
	var syncLoaders, backgroundLoaders []Loader
	for _, l := range c.loaders {
		if !l.Applicable(file) {
			continue
		}
		if l.MayLoadInBackground() {
			backgroundLoaders = append(backgroundLoaders, l)
		} else {
			syncLoaders = append(syncLoaders, l)
		}
	}

	// Synchronous loaders first, in priority order; the first result wins.
	for _, l := range syncLoaders {
		if snapshot, ok := l.Load(ctx, file, fp); ok {
			c.logger.Debug("Loader %s resolved %s synchronously", l.Name(), file.URI())
			c.deliver(file, snapshot, opts)
			return true
		}
	}

	// Test determinism override: retry the full ordered chain synchronously.
	if opts.ForceSync {
		for _, l := range c.loaders {
			if !l.Applicable(file) {
				continue
			}
			if snapshot, ok := l.Load(ctx, file, fp); ok {
				c.logger.Debug("Loader %s resolved %s in forced-sync mode", l.Name(), file.URI())
				c.deliver(file, snapshot, opts)
				return true
			}
		}
		return false
	}

	if len(backgroundLoaders) == 0 {
		c.logger.Warn("No loader accepted %s", file.URI())
		return false
	}

	if opts.Postponed && !c.autoReload() && !opts.FirstLoad {
		// Stale but not urgent: surface an affordance whose acceptance runs
		// the background loaders later. Accepting is an explicit reload
		// request, so the result applies without asking again.
		c.notifier.ShowReloadAffordance(file.URI(), func() {
			accepted := opts
			accepted.SkipNotification = true
			c.scheduleBackground(file, backgroundLoaders, accepted)
		})
		return false
	}

	c.scheduleBackground(file, backgroundLoaders, opts)
	return false
}

func (c *Chain) scheduleBackground(file host.ScriptFile, loaders []Loader, opts Options) {
	c.background.Schedule(file.URI(), func() {
		// The file may have changed back (or been loaded by a joined request)
		// while this task waited; skip the load entirely in that case.
		if c.upToDate(file) {
			c.logger.Debug("Skipping background load for %s: already up to date", file.URI())
			return
		}

		ctx := context.Background()
		fp := c.fingerprint(file)
		for _, l := range loaders {
			if snapshot, ok := l.Load(ctx, file, fp); ok {
				c.logger.Debug("Loader %s resolved %s in background", l.Name(), file.URI())
				c.deliver(file, snapshot, opts)
				return
			}
		}
		c.logger.Warn("No background loader produced a result for %s", file.URI())
	})
}
