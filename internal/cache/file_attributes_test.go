package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/uri"

	"scriptconfig/internal/scripting"
)

func TestFileAttributeStoreRoundTrip(t *testing.T) {
	store := NewFileAttributeStore(t.TempDir())
	u := uri.File("/project/build.kts")

	snapshot := scripting.NewSnapshot(
		&scripting.Configuration{
			ClassPath: []string{"/lib/a.jar"},
			SDK:       scripting.SDK{Name: "11", HomePath: "/sdk/11"},
		},
		scripting.ComputeFingerprint([]byte("content"), nil),
		[]scripting.Report{scripting.InfoReport("test", "resolved")},
	)

	require.NoError(t, store.Save(u, snapshot))

	restored, ok := store.Load(u)
	require.True(t, ok)
	assert.Equal(t, snapshot.Fingerprint, restored.Fingerprint)
	require.NotNil(t, restored.Configuration)
	assert.Equal(t, snapshot.Configuration.ClassPath, restored.Configuration.ClassPath)
	assert.Equal(t, snapshot.Configuration.SDK, restored.Configuration.SDK)
	assert.Len(t, restored.Reports, 1)
}

func TestFileAttributeStoreMisses(t *testing.T) {
	dir := t.TempDir()
	store := NewFileAttributeStore(dir)
	u := uri.File("/project/build.kts")

	t.Run("absent_entry", func(t *testing.T) {
		_, ok := store.Load(u)
		assert.False(t, ok)
	})

	t.Run("malformed_entry", func(t *testing.T) {
		require.NoError(t, store.Save(u, scripting.NewSnapshot(nil, "fp", nil)))

		// Corrupt the entry on disk; the store must treat it as a miss.
		entries, err := filepath.Glob(filepath.Join(dir, "attributes", "*.json"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.NoError(t, os.WriteFile(entries[0], []byte("{not json"), 0600))

		_, ok := store.Load(u)
		assert.False(t, ok)
	})
}

func TestFileAttributeStoreRemove(t *testing.T) {
	store := NewFileAttributeStore(t.TempDir())
	u := uri.File("/project/build.kts")

	require.NoError(t, store.Save(u, scripting.NewSnapshot(nil, "fp", nil)))
	store.Remove(u)

	_, ok := store.Load(u)
	assert.False(t, ok)
}

func TestPersistentCacheWriteThrough(t *testing.T) {
	dir := t.TempDir()
	store := NewFileAttributeStore(dir)
	c := NewPersistentCache(store)
	u := uri.File("/project/build.kts")

	snapshot := testSnapshot("/lib/a.jar")
	c.SetApplied(u, snapshot)

	// A fresh session over the same storage sees the applied snapshot.
	restored, ok := NewFileAttributeStore(dir).Load(u)
	require.True(t, ok)
	assert.Equal(t, snapshot.Fingerprint, restored.Fingerprint)

	t.Run("loaded_slot_not_persisted", func(t *testing.T) {
		u2 := uri.File("/project/other.kts")
		c.SetLoaded(u2, testSnapshot("/lib/b.jar"))
		_, ok := store.Load(u2)
		assert.False(t, ok)
	})

	t.Run("remove_drops_persisted_entry", func(t *testing.T) {
		c.Remove(u)
		_, ok := store.Load(u)
		assert.False(t, ok)
	})
}
