package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"scriptconfig/internal/cache"
	"scriptconfig/internal/host"
	"scriptconfig/internal/scripting"
)

func TestOutsiderFileLoader(t *testing.T) {
	sdk := scripting.SDK{Name: "11", HomePath: "/sdk/11"}
	l := NewOutsiderFileLoader("/project", sdk)

	t.Run("claims_files_outside_project", func(t *testing.T) {
		assert.True(t, l.Applicable(&fakeFile{path: "/tmp/scratch.kts"}))
		assert.False(t, l.Applicable(&fakeFile{path: "/project/build.kts"}))
		assert.False(t, l.Applicable(&fakeFile{path: "/project/nested/deep.kts"}))
	})

	t.Run("declines_when_relation_is_undecidable", func(t *testing.T) {
		// filepath.Rel cannot relate a relative path to an absolute root;
		// the file must fall through to the remaining loaders instead of
		// getting an SDK-only configuration.
		assert.False(t, l.Applicable(&fakeFile{path: "scratch.kts"}))
	})

	t.Run("produces_sdk_only_configuration", func(t *testing.T) {
		snapshot, ok := l.Load(context.Background(), &fakeFile{path: "/tmp/scratch.kts"}, "fp")
		require.True(t, ok)
		require.NotNil(t, snapshot.Configuration)
		assert.Empty(t, snapshot.Configuration.ClassPath)
		assert.Equal(t, sdk, snapshot.Configuration.SDK)
		require.Len(t, snapshot.Reports, 1)
		assert.Equal(t, protocol.DiagnosticSeverityInformation, snapshot.Reports[0].Severity)
	})

	assert.False(t, l.MayLoadInBackground())
}

func TestFileAttributeLoader(t *testing.T) {
	store := cache.NewFileAttributeStore(t.TempDir())
	l := NewFileAttributeLoader(store)
	file := &fakeFile{path: "/project/build.kts", content: []byte("content")}
	fp := scripting.ComputeFingerprint([]byte("content"), nil)

	t.Run("miss_on_absent_entry", func(t *testing.T) {
		_, ok := l.Load(context.Background(), file, fp)
		assert.False(t, ok)
	})

	cfg := &scripting.Configuration{ClassPath: []string{"/lib/a.jar"}}
	require.NoError(t, store.Save(file.URI(), scripting.NewSnapshot(cfg, fp, nil)))

	t.Run("hit_on_matching_fingerprint", func(t *testing.T) {
		snapshot, ok := l.Load(context.Background(), file, fp)
		require.True(t, ok)
		assert.Equal(t, cfg.ClassPath, snapshot.Configuration.ClassPath)
	})

	t.Run("miss_on_stale_fingerprint", func(t *testing.T) {
		stale := scripting.ComputeFingerprint([]byte("edited"), nil)
		_, ok := l.Load(context.Background(), file, stale)
		assert.False(t, ok)
	})

	t.Run("miss_on_persisted_failure", func(t *testing.T) {
		failed := &fakeFile{path: "/project/broken.kts"}
		require.NoError(t, store.Save(failed.URI(), scripting.NewSnapshot(nil, fp, nil)))
		_, ok := l.Load(context.Background(), failed, fp)
		assert.False(t, ok)
	})
}

type stubResolver struct {
	cfg     *scripting.Configuration
	reports []scripting.Report
	err     error
}

func (r *stubResolver) Resolve(context.Context, host.ScriptFile) (*scripting.Configuration, []scripting.Report, error) {
	return r.cfg, r.reports, r.err
}

func TestCompilerLoader(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		cfg := &scripting.Configuration{ClassPath: []string{"/lib/a.jar"}}
		l := NewCompilerLoader(&stubResolver{cfg: cfg})

		snapshot, ok := l.Load(context.Background(), &fakeFile{path: "/project/build.kts"}, "fp")
		require.True(t, ok)
		assert.Same(t, cfg, snapshot.Configuration)
		assert.Equal(t, scripting.Fingerprint("fp"), snapshot.Fingerprint)
	})

	t.Run("failure_becomes_diagnostics", func(t *testing.T) {
		l := NewCompilerLoader(&stubResolver{err: errors.New("resolution exploded")})

		snapshot, ok := l.Load(context.Background(), &fakeFile{path: "/project/build.kts"}, "fp")
		require.True(t, ok)
		assert.Nil(t, snapshot.Configuration)
		require.Len(t, snapshot.Reports, 1)
		assert.Equal(t, protocol.DiagnosticSeverityError, snapshot.Reports[0].Severity)
		assert.Contains(t, snapshot.Reports[0].Message, "resolution exploded")
	})

	assert.True(t, NewCompilerLoader(&stubResolver{}).MayLoadInBackground())
}
