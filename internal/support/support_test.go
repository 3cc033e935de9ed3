package support

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"scriptconfig/internal/cache"
	"scriptconfig/internal/executor"
	"scriptconfig/internal/host"
	"scriptconfig/internal/loader"
	"scriptconfig/internal/roots"
	"scriptconfig/internal/rootstore"
	"scriptconfig/internal/scripting"
)

// fakeFile is a mutable in-memory script file.
type fakeFile struct {
	mu      sync.Mutex
	uri     uri.URI
	path    string
	content []byte
}

func newFakeFile(path, content string) *fakeFile {
	return &fakeFile{uri: uri.File(path), path: path, content: []byte(content)}
}

func (f *fakeFile) URI() uri.URI       { return f.uri }
func (f *fakeFile) Path() string       { return f.path }
func (f *fakeFile) ModTime() time.Time { return time.Time{} }

func (f *fakeFile) Content() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.content...), nil
}

func (f *fakeFile) setContent(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = []byte(content)
}

// fakeFileStore answers editor-state queries with a controllable open set.
type fakeFileStore struct {
	mu    sync.Mutex
	files map[uri.URI]host.ScriptFile
	open  map[uri.URI]bool
}

func newFakeFileStore(files ...*fakeFile) *fakeFileStore {
	s := &fakeFileStore{files: make(map[uri.URI]host.ScriptFile), open: make(map[uri.URI]bool)}
	for _, f := range files {
		s.files[f.URI()] = f
	}
	return s
}

func (s *fakeFileStore) Lookup(u uri.URI) (host.ScriptFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[u]
	return f, ok
}

func (s *fakeFileStore) IsOpen(u uri.URI) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open[u]
}

func (s *fakeFileStore) setOpen(u uri.URI, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[u] = open
}

type recordingHighlighter struct {
	mu        sync.Mutex
	refreshed []uri.URI
}

func (h *recordingHighlighter) Refresh(u uri.URI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refreshed = append(h.refreshed, u)
}

func (h *recordingHighlighter) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.refreshed)
}

type recordingSink struct {
	mu        sync.Mutex
	published map[uri.URI][][]protocol.Diagnostic
}

func newRecordingSink() *recordingSink {
	return &recordingSink{published: make(map[uri.URI][][]protocol.Diagnostic)}
}

func (s *recordingSink) Publish(u uri.URI, diagnostics []protocol.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[u] = append(s.published[u], diagnostics)
}

func (s *recordingSink) latest(u uri.URI) []protocol.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.published[u]
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// affordanceNotifier records reload affordances and lets tests accept them.
// With autoAccept set it invokes accept on the calling goroutine, like the
// headless CLI notifier does.
type affordanceNotifier struct {
	mu         sync.Mutex
	accepts    map[uri.URI]func()
	shown      int
	hidden     int
	autoAccept bool
}

func newAffordanceNotifier() *affordanceNotifier {
	return &affordanceNotifier{accepts: make(map[uri.URI]func())}
}

func (n *affordanceNotifier) ShowReloadAffordance(u uri.URI, accept func()) {
	n.mu.Lock()
	n.accepts[u] = accept
	n.shown++
	auto := n.autoAccept
	n.mu.Unlock()

	if auto {
		accept()
	}
}

func (n *affordanceNotifier) setAutoAccept(auto bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.autoAccept = auto
}

func (n *affordanceNotifier) Hide(u uri.URI) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.accepts, u)
	n.hidden++
}

func (n *affordanceNotifier) accept(t *testing.T, u uri.URI) func() {
	t.Helper()
	n.mu.Lock()
	accept, ok := n.accepts[u]
	n.mu.Unlock()
	require.True(t, ok, "no affordance shown for %s", u)
	return accept
}

func (n *affordanceNotifier) shownCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shown
}

type countingIndexListener struct {
	mu    sync.Mutex
	calls int
}

func (l *countingIndexListener) RootsRebuilt(int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
}

func (l *countingIndexListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// scriptedLoader resolves by parsing the file content as newline-separated
// classpath entries, so tests steer results by editing the file.
type scriptedLoader struct {
	mu         sync.Mutex
	background bool
	failNext   bool
	calls      int
	gate       chan struct{} // when non-nil, Load blocks until closed
	entered    chan struct{} // closed when a gated Load reaches the gate
}

func (l *scriptedLoader) Name() string                    { return "scripted" }
func (l *scriptedLoader) Applicable(host.ScriptFile) bool { return true }
func (l *scriptedLoader) MayLoadInBackground() bool       { return l.background }

func (l *scriptedLoader) Load(_ context.Context, file host.ScriptFile, fp scripting.Fingerprint) (*scripting.Snapshot, bool) {
	l.mu.Lock()
	l.calls++
	fail := l.failNext
	l.failNext = false
	gate := l.gate
	entered := l.entered
	l.gate = nil
	l.entered = nil
	l.mu.Unlock()

	if gate != nil {
		if entered != nil {
			close(entered)
		}
		<-gate
	}
	if fail {
		return scripting.NewSnapshot(nil, fp, []scripting.Report{
			scripting.ErrorReport(l.Name(), "resolution failed"),
		}), true
	}

	content, err := file.Content()
	if err != nil {
		return scripting.NewSnapshot(nil, fp, []scripting.Report{
			scripting.ErrorReport(l.Name(), err.Error()),
		}), true
	}
	var classPath []string
	for _, line := range splitLines(string(content)) {
		if line != "" {
			classPath = append(classPath, line)
		}
	}
	return scripting.NewSnapshot(&scripting.Configuration{ClassPath: classPath}, fp, nil), true
}

// armGate makes the next Load block until the returned gate channel is
// closed; the entered channel closes once that Load has started.
func (l *scriptedLoader) armGate() (gate, entered chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gate = make(chan struct{})
	l.entered = make(chan struct{})
	return l.gate, l.entered
}

func (l *scriptedLoader) setFailNext() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = true
}

func (l *scriptedLoader) loadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// scriptHarness bundles a ScriptSupport with every fake it talks to.
type scriptHarness struct {
	support     *ScriptSupport
	loader      *scriptedLoader
	store       *fakeFileStore
	sink        *recordingSink
	notifier    *affordanceNotifier
	highlighter *recordingHighlighter
	listener    *countingIndexListener
	background  *executor.BackgroundExecutor
	policy      *policyHolder
}

type policyHolder struct {
	mu     sync.Mutex
	policy Policy
}

func (p *policyHolder) get() Policy {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.policy
}

func (p *policyHolder) set(policy Policy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.policy = policy
}

func newScriptHarness(t *testing.T, policy Policy, files ...*fakeFile) *scriptHarness {
	t.Helper()

	h := &scriptHarness{
		loader:      &scriptedLoader{background: true},
		store:       newFakeFileStore(files...),
		sink:        newRecordingSink(),
		notifier:    newAffordanceNotifier(),
		highlighter: &recordingHighlighter{},
		listener:    &countingIndexListener{},
		background:  executor.NewBackgroundExecutor(),
		policy:      &policyHolder{policy: policy},
	}
	t.Cleanup(h.background.Stop)

	h.support = NewScriptSupport(ScriptSupportConfig{
		Name:        "scripts",
		Patterns:    []string{"*.kts"},
		Cache:       cache.NewMemoryCache(),
		RootStore:   rootstore.Open(filepath.Join(t.TempDir(), "roots.json")),
		Loaders:     []loader.Loader{h.loader},
		Background:  h.background,
		Indexer:     roots.NewIndexer(h.listener),
		Files:       h.store,
		Highlighter: h.highlighter,
		Diagnostics: h.sink,
		Notifier:    h.notifier,
		UI:          executor.SyncUI{},
		Policy:      h.policy.get,
	})
	return h
}
