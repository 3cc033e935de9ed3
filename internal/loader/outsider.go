package loader

import (
	"context"
	"path/filepath"
	"strings"

	"scriptconfig/internal/host"
	"scriptconfig/internal/scripting"
)

// OutsiderFileLoader serves scripts that live outside the project roots.
// Such files get a minimal configuration (SDK only) immediately instead of a
// full resolution pass, with an informational report explaining why.
type OutsiderFileLoader struct {
	projectRoot string
	sdk         scripting.SDK
}

// NewOutsiderFileLoader creates a loader claiming files outside projectRoot.
func NewOutsiderFileLoader(projectRoot string, sdk scripting.SDK) *OutsiderFileLoader {
	return &OutsiderFileLoader{projectRoot: filepath.Clean(projectRoot), sdk: sdk}
}

func (l *OutsiderFileLoader) Name() string { return "outsider" }

func (l *OutsiderFileLoader) MayLoadInBackground() bool { return false }

func (l *OutsiderFileLoader) Applicable(file host.ScriptFile) bool {
	rel, err := filepath.Rel(l.projectRoot, file.Path())
	if err != nil {
		// Undecidable (mixed volumes, relative vs absolute): leave the file
		// to the remaining loaders rather than short-circuit with an
		// SDK-only configuration.
		return false
	}
	return strings.HasPrefix(rel, "..")
}

func (l *OutsiderFileLoader) Load(_ context.Context, file host.ScriptFile, fp scripting.Fingerprint) (*scripting.Snapshot, bool) {
	cfg := &scripting.Configuration{SDK: l.sdk}
	reports := []scripting.Report{
		scripting.InfoReport(l.Name(), "script is outside the project; dependencies are limited to the SDK"),
	}
	return scripting.NewSnapshot(cfg, fp, reports), true
}
