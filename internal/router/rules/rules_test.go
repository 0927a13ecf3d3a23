package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSources(t *testing.T) {
	for _, name := range []string{DictFile, ListFile, DatalogFile} {
		src, err := Embedded(name)
		require.NoError(t, err, name)
		assert.Contains(t, src, "route", name)
	}

	_, err := Embedded("nope.pl")
	assert.Error(t, err)
}

func TestLoaderFallsBackToEmbedded(t *testing.T) {
	l, err := NewLoader(4)
	require.NoError(t, err)

	src, err := l.Load("", DictFile)
	require.NoError(t, err)
	assert.Contains(t, src, "missing_required")
	assert.Equal(t, 0, l.Len())
}

func TestLoaderCachesByModTime(t *testing.T) {
	l, err := NewLoader(4)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "custom.pl")
	require.NoError(t, os.WriteFile(path, []byte("route(a, _, _, t, [])."), 0644))

	first, err := l.Load(path, DictFile)
	require.NoError(t, err)
	assert.Equal(t, "route(a, _, _, t, []).", first)
	assert.Equal(t, 1, l.Len())

	_, err = l.Load(path, DictFile)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len(), "unchanged file served from cache")

	require.NoError(t, os.WriteFile(path, []byte("route(b, _, _, t, [])."), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := l.Load(path, DictFile)
	require.NoError(t, err)
	assert.Equal(t, "route(b, _, _, t, []).", second)
	assert.Equal(t, 2, l.Len())

	l.Purge()
	assert.Equal(t, 0, l.Len())
}

func TestLoaderMissingFile(t *testing.T) {
	l, err := NewLoader(0)
	require.NoError(t, err)

	_, err = l.Load(filepath.Join(t.TempDir(), "absent.pl"), DictFile)
	assert.Error(t, err)
}

func TestMaterializeIsContentAddressed(t *testing.T) {
	dir := t.TempDir()

	a, err := Materialize(dir, "router.pl", "foo.")
	require.NoError(t, err)
	b, err := Materialize(dir, "router.pl", "foo.")
	require.NoError(t, err)
	c, err := Materialize(dir, "router.pl", "bar.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	data, err := os.ReadFile(c)
	require.NoError(t, err)
	assert.Equal(t, "bar.", string(data))
}
