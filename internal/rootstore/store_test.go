package rootstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptconfig/internal/scripting"
)

func rootsWith(classFiles ...string) scripting.ClassRoots {
	r := scripting.NewClassRoots()
	r.AddClassFiles(classFiles...)
	return r
}

func TestStoreSaveAndContainsAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roots.json")
	store := Open(path)

	assert.False(t, store.ContainsAll(rootsWith("/lib/a.jar")))
	assert.True(t, store.ContainsAll(scripting.NewClassRoots()))

	saved := scripting.NewClassRoots()
	saved.AddClassFiles("/lib/a.jar", "/lib/b.jar")
	saved.AddSourceFiles("/src")
	saved.AddSDKs(scripting.SDK{Name: "11", HomePath: "/sdk/11"})
	require.NoError(t, store.Save(saved))

	assert.True(t, store.ContainsAll(rootsWith("/lib/a.jar")))
	assert.True(t, store.ContainsAll(saved))
	assert.False(t, store.ContainsAll(rootsWith("/lib/new.jar")))
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roots.json")

	first := Open(path)
	require.NoError(t, first.Save(rootsWith("/lib/a.jar")))

	second := Open(path)
	assert.True(t, second.ContainsAll(rootsWith("/lib/a.jar")))
	assert.False(t, second.ContainsAll(rootsWith("/lib/b.jar")))
}

func TestStoreSaveMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roots.json")
	store := Open(path)

	require.NoError(t, store.Save(rootsWith("/lib/a.jar")))
	require.NoError(t, store.Save(rootsWith("/lib/b.jar")))

	both := rootsWith("/lib/a.jar", "/lib/b.jar")
	assert.True(t, store.ContainsAll(both))
}

func TestStoreMalformedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roots.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0600))

	store := Open(path)
	assert.False(t, store.ContainsAll(rootsWith("/lib/a.jar")))

	// The store still works after discarding the malformed content.
	require.NoError(t, store.Save(rootsWith("/lib/a.jar")))
	assert.True(t, store.ContainsAll(rootsWith("/lib/a.jar")))
}
