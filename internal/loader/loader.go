// Package loader implements the ordered configuration loader chain and the
// per-file reload decision: load synchronously now, defer to a background
// worker, or defer to an explicit user action.
package loader

import (
	"context"

	"scriptconfig/internal/host"
	"scriptconfig/internal/scripting"
)

// Loader is one strategy for producing a script configuration snapshot.
type Loader interface {
	Name() string
	// Applicable reports whether this loader can serve the file at all. Must
	// be cheap: no I/O.
	Applicable(file host.ScriptFile) bool
	// MayLoadInBackground reports whether the loader is eligible for
	// background execution. Loaders answering false run on the calling
	// goroutine only.
	MayLoadInBackground() bool
	// Load attempts to produce a snapshot. The second result is false when
	// the loader declined (the chain moves on to the next loader). A loader
	// that accepted but failed to resolve returns a snapshot with a nil
	// configuration and error reports; it never returns an error.
	Load(ctx context.Context, file host.ScriptFile, fp scripting.Fingerprint) (*scripting.Snapshot, bool)
}

// Options carries the per-request reload policy flags.
type Options struct {
	// FirstLoad is set when no applied configuration exists yet; first loads
	// always run, never postpone.
	FirstLoad bool
	// PreviewOnly requests loading without application, e.g. for inspections
	// that only want to peek at the would-be configuration.
	PreviewOnly bool
	// ForceSync retries the full chain synchronously when no synchronous
	// loader produced a result. Used for deterministic tests.
	ForceSync bool
	// Postponed requests a "stale, click to reload" affordance instead of an
	// immediate background load.
	Postponed bool
	// SkipNotification applies the result without asking the user.
	SkipNotification bool
}

// Resolver performs the actual compiler-side configuration resolution for the
// default loader. It is an external collaborator (e.g. a script definition
// compiler facade).
type Resolver interface {
	Resolve(ctx context.Context, file host.ScriptFile) (*scripting.Configuration, []scripting.Report, error)
}
