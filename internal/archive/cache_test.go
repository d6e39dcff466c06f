package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestZip creates a zip at path with the given entries
func writeTestZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)

		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
}

func TestCacheAcquireMemoizes(t *testing.T) {
	tempDir := t.TempDir()
	jarPath := filepath.Join(tempDir, "src.jar")
	writeTestZip(t, jarPath, map[string]string{"Foo.java": "class Foo {}"})

	cache := NewCache()
	defer cache.CloseAll()

	opens := 0
	openFn := cache.openFn
	cache.openFn = func(path string) (*zip.ReadCloser, error) {
		opens++
		return openFn(path)
	}

	first, err := cache.Acquire(jarPath)
	require.NoError(t, err)

	second, err := cache.Acquire(jarPath)
	require.NoError(t, err)

	assert.Same(t, first, second, "same path should return the memoized handle")
	assert.Equal(t, 1, opens, "underlying open should happen exactly once")
	assert.Equal(t, 1, cache.Len())
}

func TestCacheAcquireDistinctPaths(t *testing.T) {
	tempDir := t.TempDir()

	first := filepath.Join(tempDir, "a.jar")
	second := filepath.Join(tempDir, "b.jar")
	writeTestZip(t, first, map[string]string{"A.java": "class A {}"})
	writeTestZip(t, second, map[string]string{"B.java": "class B {}"})

	cache := NewCache()
	defer cache.CloseAll()

	handleA, err := cache.Acquire(first)
	require.NoError(t, err)

	handleB, err := cache.Acquire(second)
	require.NoError(t, err)

	assert.NotSame(t, handleA, handleB)
	assert.Equal(t, 2, cache.Len())
}

func TestCacheAcquireMissingArchive(t *testing.T) {
	cache := NewCache()
	defer cache.CloseAll()

	_, err := cache.Acquire(filepath.Join(t.TempDir(), "missing.jar"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArchiveOpen)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheCloseAll(t *testing.T) {
	tempDir := t.TempDir()
	jarPath := filepath.Join(tempDir, "src.jar")
	writeTestZip(t, jarPath, map[string]string{"Foo.java": "class Foo {}"})

	cache := NewCache()

	_, err := cache.Acquire(jarPath)
	require.NoError(t, err)

	require.NoError(t, cache.CloseAll())
	assert.Equal(t, 0, cache.Len())

	// safe with no handles open
	require.NoError(t, cache.CloseAll())

	// the cache is reusable after a close
	_, err = cache.Acquire(jarPath)
	require.NoError(t, err)
	require.NoError(t, cache.CloseAll())
}
