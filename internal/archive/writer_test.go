package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under dir from relative path to content
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// readJarEntries returns entry names in archive order and their contents
func readJarEntries(t *testing.T, jarPath string) ([]string, map[string]string) {
	t.Helper()

	r, err := zip.OpenReader(jarPath)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	contents := make(map[string]string)
	for _, f := range r.File {
		names = append(names, f.Name)

		rc, err := f.Open()
		require.NoError(t, err)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		contents[f.Name] = string(data)
	}

	return names, contents
}

func TestWriteJarContents(t *testing.T) {
	tempDir := t.TempDir()
	classDir := filepath.Join(tempDir, "classes")
	writeTree(t, classDir, map[string]string{
		"com/example/Foo.class":             "foo-bytes",
		"com/example/Bar.class":             "bar-bytes",
		"META-INF/services/com.example.Svc": "provider",
	})

	jarPath := filepath.Join(tempDir, "out.jar")
	require.NoError(t, WriteJar(jarPath, classDir, false))

	names, contents := readJarEntries(t, jarPath)
	assert.Equal(t, []string{
		"META-INF/services/com.example.Svc",
		"com/example/Bar.class",
		"com/example/Foo.class",
	}, names, "entries should be sorted")
	assert.Equal(t, "foo-bytes", contents["com/example/Foo.class"])
}

func TestWriteJarDeterministic(t *testing.T) {
	tempDir := t.TempDir()
	classDir := filepath.Join(tempDir, "classes")
	writeTree(t, classDir, map[string]string{
		"A.class":     "aaa",
		"B.class":     "bbb",
		"sub/C.class": "ccc",
	})

	first := filepath.Join(tempDir, "first.jar")
	second := filepath.Join(tempDir, "second.jar")
	require.NoError(t, WriteJar(first, classDir, true))
	require.NoError(t, WriteJar(second, classDir, true))

	firstBytes, err := os.ReadFile(first)
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(second)
	require.NoError(t, err)

	assert.Equal(t, firstBytes, secondBytes, "identical inputs should produce byte-identical jars")
}

func TestWriteJarMissingDir(t *testing.T) {
	tempDir := t.TempDir()
	jarPath := filepath.Join(tempDir, "empty.jar")

	require.NoError(t, WriteJar(jarPath, filepath.Join(tempDir, "does-not-exist"), false))

	names, _ := readJarEntries(t, jarPath)
	assert.Empty(t, names)
}

func TestWriteJarCompression(t *testing.T) {
	tempDir := t.TempDir()
	classDir := filepath.Join(tempDir, "classes")
	writeTree(t, classDir, map[string]string{"Foo.class": "foo"})

	jarPath := filepath.Join(tempDir, "out.jar")
	require.NoError(t, WriteJar(jarPath, classDir, true))

	r, err := zip.OpenReader(jarPath)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 1)
	assert.Equal(t, zip.Deflate, r.File[0].Method)
}
