package host

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"scriptconfig/internal/common"
)

// Logging collaborator implementations for headless use: the CLI has no
// editor, so highlighting, notifications and diagnostics reduce to log lines.

// LogHighlighter logs highlighting refresh requests.
type LogHighlighter struct{}

func (LogHighlighter) Refresh(u uri.URI) {
	common.ScriptLogger.Debug("Highlighting refresh requested for %s", u)
}

// LogDiagnostics logs published diagnostics.
type LogDiagnostics struct{}

func (LogDiagnostics) Publish(u uri.URI, diagnostics []protocol.Diagnostic) {
	for _, d := range diagnostics {
		switch d.Severity {
		case protocol.DiagnosticSeverityError:
			common.ScriptLogger.Error("%s: %s", u, d.Message)
		case protocol.DiagnosticSeverityWarning:
			common.ScriptLogger.Warn("%s: %s", u, d.Message)
		default:
			common.ScriptLogger.Info("%s: %s", u, d.Message)
		}
	}
}

// LogNotifier logs reload affordances. When AutoAccept is set the affordance
// is accepted immediately, which is the only sensible behavior without a UI.
type LogNotifier struct {
	AutoAccept bool
}

func (n LogNotifier) ShowReloadAffordance(u uri.URI, accept func()) {
	common.ScriptLogger.Info("Configuration for %s changed; reload pending", u)
	if n.AutoAccept {
		accept()
	}
}

func (LogNotifier) Hide(uri.URI) {}

// LogIndexListener logs index-rebuild notifications.
type LogIndexListener struct{}

func (LogIndexListener) RootsRebuilt(generation int64) {
	common.ScriptLogger.Debug("Dependency roots rebuilt, generation %d", generation)
}
