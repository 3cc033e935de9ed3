package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/uri"

	"scriptconfig/internal/scripting"
)

func testSnapshot(classPath ...string) *scripting.Snapshot {
	return scripting.NewSnapshot(
		&scripting.Configuration{ClassPath: classPath},
		scripting.ComputeFingerprint([]byte("content"), nil),
		nil,
	)
}

func TestMemoryCacheTwoSlots(t *testing.T) {
	c := NewMemoryCache()
	u := uri.File("/project/build.kts")

	_, ok := c.Get(u)
	assert.False(t, ok)

	loaded := testSnapshot("/lib/a.jar")
	c.SetLoaded(u, loaded)

	state, ok := c.Get(u)
	require.True(t, ok)
	assert.Same(t, loaded, state.Loaded)
	assert.Nil(t, state.Applied)

	// Applying a different snapshot leaves the loaded slot alone.
	applied := testSnapshot("/lib/a.jar")
	c.SetApplied(u, applied)

	state, ok = c.Get(u)
	require.True(t, ok)
	assert.Same(t, loaded, state.Loaded)
	assert.Same(t, applied, state.Applied)

	// A newer load never silently replaces the applied snapshot.
	newer := testSnapshot("/lib/a.jar", "/lib/b.jar")
	c.SetLoaded(u, newer)

	state, _ = c.Get(u)
	assert.Same(t, newer, state.Loaded)
	assert.Same(t, applied, state.Applied)
}

func TestMemoryCacheAllApplied(t *testing.T) {
	c := NewMemoryCache()
	u1 := uri.File("/project/a.kts")
	u2 := uri.File("/project/b.kts")
	u3 := uri.File("/project/c.kts")

	c.SetApplied(u1, testSnapshot("/lib/a.jar"))
	c.SetApplied(u2, testSnapshot("/lib/b.jar"))
	c.SetLoaded(u3, testSnapshot("/lib/c.jar")) // loaded only, must not appear

	entries := c.AllApplied()
	assert.Len(t, entries, 2)

	seen := map[uri.URI]bool{}
	for _, e := range entries {
		seen[e.URI] = true
	}
	assert.True(t, seen[u1])
	assert.True(t, seen[u2])
	assert.False(t, seen[u3])
}

func TestMemoryCacheRemoveAndClear(t *testing.T) {
	c := NewMemoryCache()
	u := uri.File("/project/a.kts")

	c.SetApplied(u, testSnapshot("/lib/a.jar"))
	c.Remove(u)
	_, ok := c.Get(u)
	assert.False(t, ok)

	c.SetApplied(u, testSnapshot("/lib/a.jar"))
	c.Clear()
	_, ok = c.Get(u)
	assert.False(t, ok)
	assert.Empty(t, c.AllApplied())
}

func TestMemoryCacheGetReturnsCopy(t *testing.T) {
	c := NewMemoryCache()
	u := uri.File("/project/a.kts")
	c.SetLoaded(u, testSnapshot("/lib/a.jar"))

	state, _ := c.Get(u)
	state.Loaded = nil

	fresh, _ := c.Get(u)
	assert.NotNil(t, fresh.Loaded)
}
