package scripting

import (
	"time"

	"go.lsp.dev/protocol"
)

// Report is one diagnostic produced during a load attempt.
type Report struct {
	Severity protocol.DiagnosticSeverity `json:"severity"`
	Message  string                      `json:"message"`
	Source   string                      `json:"source,omitempty"`
}

// Diagnostic converts the report to the host's diagnostic model.
func (r Report) Diagnostic() protocol.Diagnostic {
	return protocol.Diagnostic{
		Severity: r.Severity,
		Message:  r.Message,
		Source:   r.Source,
	}
}

// ErrorReport creates an error-severity report.
func ErrorReport(source, message string) Report {
	return Report{Severity: protocol.DiagnosticSeverityError, Message: message, Source: source}
}

// InfoReport creates an information-severity report.
func InfoReport(source, message string) Report {
	return Report{Severity: protocol.DiagnosticSeverityInformation, Message: message, Source: source}
}

// Diagnostics converts a report list for publication to the host.
func Diagnostics(reports []Report) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.Diagnostic())
	}
	return out
}

// Snapshot is the immutable record of one load attempt: the configuration it
// produced (nil when resolution failed), the inputs fingerprint at load time
// and the diagnostics the loader emitted. Failed attempts still produce a
// snapshot so their diagnostics survive.
type Snapshot struct {
	Configuration *Configuration `json:"configuration,omitempty"`
	Fingerprint   Fingerprint    `json:"fingerprint"`
	Reports       []Report       `json:"reports,omitempty"`
	LoadedAt      time.Time      `json:"loaded_at"`
}

// NewSnapshot creates a snapshot for a load attempt.
func NewSnapshot(cfg *Configuration, fp Fingerprint, reports []Report) *Snapshot {
	return &Snapshot{
		Configuration: cfg,
		Fingerprint:   fp,
		Reports:       reports,
		LoadedAt:      time.Now(),
	}
}

// State is a file's two-slot cache entry. Loaded holds the most recent load
// result and may run ahead of Applied, which only changes through an explicit
// apply step. Diverging slots signal a pending user decision.
type State struct {
	Loaded  *Snapshot
	Applied *Snapshot
}

// Newest returns the snapshot whose fingerprint decides staleness: the
// latest loaded one when present, otherwise the applied one. A load whose
// application was suppressed (similar configuration) still counts as
// covering the file's current state.
func (s *State) Newest() *Snapshot {
	if s == nil {
		return nil
	}
	if s.Loaded != nil {
		return s.Loaded
	}
	return s.Applied
}

// AppliedConfiguration returns the configuration in effect for the file,
// falling back to the loaded one when nothing was applied yet.
func (s *State) AppliedConfiguration() *Configuration {
	if s == nil {
		return nil
	}
	if s.Applied != nil {
		return s.Applied.Configuration
	}
	if s.Loaded != nil {
		return s.Loaded.Configuration
	}
	return nil
}

// IsUpToDate reports whether the cached state still matches the file's
// current fingerprint. Must stay allocation-free: it runs on every
// file-open and edit event.
func (s *State) IsUpToDate(current Fingerprint) bool {
	snap := s.Newest()
	return snap != nil && snap.Fingerprint == current
}
