package loader

import (
	"context"
	"fmt"

	"scriptconfig/internal/host"
	"scriptconfig/internal/scripting"
)

// CompilerLoader performs full configuration resolution through the injected
// Resolver. Resolution may touch the file system and the build model, so the
// loader is background-capable.
type CompilerLoader struct {
	resolver Resolver
}

// NewCompilerLoader creates a loader backed by the given resolver.
func NewCompilerLoader(resolver Resolver) *CompilerLoader {
	return &CompilerLoader{resolver: resolver}
}

func (l *CompilerLoader) Name() string { return "compiler" }

func (l *CompilerLoader) MayLoadInBackground() bool { return true }

func (l *CompilerLoader) Applicable(host.ScriptFile) bool { return true }

// Load resolves the configuration. Resolution failures become error reports
// on a snapshot with a nil configuration; they never escape as errors, so the
// last-known-good applied configuration stays in force upstream.
func (l *CompilerLoader) Load(ctx context.Context, file host.ScriptFile, fp scripting.Fingerprint) (*scripting.Snapshot, bool) {
	cfg, reports, err := l.resolver.Resolve(ctx, file)
	if err != nil {
		reports = append(reports, scripting.ErrorReport(l.Name(), fmt.Sprintf("failed to resolve script dependencies: %v", err)))
		return scripting.NewSnapshot(nil, fp, reports), true
	}
	return scripting.NewSnapshot(cfg, fp, reports), true
}
