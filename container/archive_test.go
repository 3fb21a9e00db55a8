package container

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcth-project/jcth/filekind"
)

// buildFixtureJar writes a zip-family archive containing entries, keyed by
// relative path within the archive.
func buildFixtureJar(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.jar")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, contents := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestArchiveContainerFindAndList(t *testing.T) {
	path := buildFixtureJar(t, map[string]string{
		"com/example/Foo.class": "base",
		"com/example/Bar.class": "base-bar",
	})

	c, err := OpenArchive("CLASS_PATH", path, 0)
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.ReadOnly())
	assert.Equal(t, "CLASS_PATH", c.Location())

	fo, ok, err := c.FindFile("com/example/Foo.class")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filekind.Class, fo.Kind())

	r, err := fo.OpenInput()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	assert.Equal(t, "base", string(data))

	list, err := c.List("com.example", nil, false)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = c.GetFileForOutput("com.example", "Foo.class")
	assert.Error(t, err)
}

func TestArchiveContainerMultiReleaseOverlay(t *testing.T) {
	path := buildFixtureJar(t, map[string]string{
		"com/example/Foo.class":            "base",
		"META-INF/versions/9/com/example/Foo.class":  "v9",
		"META-INF/versions/17/com/example/Foo.class": "v17",
	})

	below9, err := OpenArchive("CLASS_PATH", path, 8)
	require.NoError(t, err)
	defer below9.Close()
	fo, _, err := below9.FindFile("com/example/Foo.class")
	require.NoError(t, err)
	data := readAll(t, fo)
	assert.Equal(t, "base", data)

	at9, err := OpenArchive("CLASS_PATH", path, 9)
	require.NoError(t, err)
	defer at9.Close()
	fo, _, err = at9.FindFile("com/example/Foo.class")
	require.NoError(t, err)
	assert.Equal(t, "v9", readAll(t, fo))

	at17, err := OpenArchive("CLASS_PATH", path, 17)
	require.NoError(t, err)
	defer at17.Close()
	fo, _, err = at17.FindFile("com/example/Foo.class")
	require.NoError(t, err)
	assert.Equal(t, "v17", readAll(t, fo))

	atHigher, err := OpenArchive("CLASS_PATH", path, 99)
	require.NoError(t, err)
	defer atHigher.Close()
	fo, _, err = atHigher.FindFile("com/example/Foo.class")
	require.NoError(t, err)
	assert.Equal(t, "v17", readAll(t, fo))
}

func TestArchiveContainerCloseRejectsFurtherReads(t *testing.T) {
	path := buildFixtureJar(t, map[string]string{"a/A.class": "x"})
	c, err := OpenArchive("CLASS_PATH", path, 0)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, _, err = c.FindFile("a/A.class")
	assert.Error(t, err)
}

func TestArchiveContainerInferBinaryNameAndContains(t *testing.T) {
	path := buildFixtureJar(t, map[string]string{"com/example/Foo.class": "x"})
	c, err := OpenArchive("CLASS_PATH", path, 0)
	require.NoError(t, err)
	defer c.Close()

	fo, ok, err := c.GetJavaFileForInput("com.example.Foo", filekind.Class)
	require.NoError(t, err)
	require.True(t, ok)

	name, ok := c.InferBinaryName(fo)
	assert.True(t, ok)
	assert.Equal(t, "com.example.Foo", name)
	assert.True(t, c.Contains(fo))
}

func readAll(t *testing.T, fo interface {
	OpenInput() (io.ReadCloser, error)
}) string {
	t.Helper()
	r, err := fo.OpenInput()
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
