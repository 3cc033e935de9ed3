// Package host defines the narrow interfaces through which the script
// configuration machinery talks to the surrounding IDE platform. Everything
// here is an external collaborator: the real implementations live in the host
// application, fakes live in tests, and the CLI wires logging stand-ins.
package host

import (
	"time"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// ScriptFile is the host's view of one script source file.
type ScriptFile interface {
	URI() uri.URI
	Path() string
	Content() ([]byte, error)
	ModTime() time.Time
}

// FileStore resolves paths to script files and answers editor-state queries.
type FileStore interface {
	Lookup(u uri.URI) (ScriptFile, bool)
	// IsOpen reports whether the file is currently open in an editor.
	IsOpen(u uri.URI) bool
}

// Highlighter restarts the syntax highlighting pass for an open file.
type Highlighter interface {
	Refresh(u uri.URI)
}

// DiagnosticsSink receives the reports produced by each load attempt.
type DiagnosticsSink interface {
	Publish(u uri.URI, diagnostics []protocol.Diagnostic)
}

// IndexListener is told when the aggregated dependency roots were rebuilt so
// class-finder indices can refresh themselves. The generation is monotonically
// increasing per roots cache.
type IndexListener interface {
	RootsRebuilt(generation int64)
}

// Notifier surfaces a "configuration changed, reload?" affordance for a file.
// Accept callbacks must tolerate being invoked multiple times; only the first
// invocation may take effect.
type Notifier interface {
	ShowReloadAffordance(u uri.URI, accept func())
	Hide(u uri.URI)
}

// UIExecutor marshals work onto the interactive thread. Highlighting restarts
// and notification updates must never run on a worker goroutine.
type UIExecutor interface {
	Invoke(fn func())
}
