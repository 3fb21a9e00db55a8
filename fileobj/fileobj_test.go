package fileobj

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/psanford/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/uri"

	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/location"
)

func TestDiskFileObjectReadWrite(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "com", "example", "Foo.java")

	fo := NewDiskFileObject(abs, "com/example/Foo.java", filekind.Source, false, nil)
	assert.Equal(t, "Foo.java", fo.Name())
	assert.Equal(t, filekind.Source, fo.Kind())
	assert.Equal(t, "com/example/Foo.java", fo.Path())

	w, err := fo.OpenOutput()
	require.NoError(t, err)
	_, err = w.Write([]byte("class Foo {}"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := fo.OpenInput()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	assert.Equal(t, "class Foo {}", string(data))

	assert.NotZero(t, fo.LastModified())
}

func TestDiskFileObjectReadOnlyRejectsOutput(t *testing.T) {
	fo := NewDiskFileObject("/nonexistent/Foo.java", "Foo.java", filekind.Source, true, nil)
	_, err := fo.OpenOutput()
	assert.Error(t, err)
}

func TestDiskFileObjectInferBinaryName(t *testing.T) {
	fo := NewDiskFileObject("/x/Foo.java", "Foo.java", filekind.Source, false, nil)
	_, ok := fo.InferBinaryName(location.Standard(location.SourcePath))
	assert.False(t, ok)

	fo2 := NewDiskFileObject("/x/Foo.java", "Foo.java", filekind.Source, false, func(location.Location) (string, bool) {
		return "Foo", true
	})
	name, ok := fo2.InferBinaryName(location.Standard(location.SourcePath))
	assert.True(t, ok)
	assert.Equal(t, "Foo", name)
}

func TestMemFileObjectReadWriteSharesFS(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, fsys.WriteFile("Bar.java", []byte("class Bar {}"), 0o644))

	root := uri.URI("jcth-mem://root/")
	fo := NewMemFileObject(fsys, root, "Bar.java", filekind.Source, false, nil)
	assert.Equal(t, "Bar.java", fo.Name())

	r, err := fo.OpenInput()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	assert.Equal(t, "class Bar {}", string(data))

	w, err := fo.OpenOutput()
	require.NoError(t, err)
	_, err = w.Write([]byte("class Bar { int x; }"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// A fresh handle over the same backing FS observes the write.
	fo2 := NewMemFileObject(fsys, root, "Bar.java", filekind.Source, false, nil)
	r2, err := fo2.OpenInput()
	require.NoError(t, err)
	data2, err := io.ReadAll(r2)
	require.NoError(t, err)
	_ = r2.Close()
	assert.Equal(t, "class Bar { int x; }", string(data2))
}

func TestMemFileObjectReadOnlyRejectsOutput(t *testing.T) {
	fsys := memfs.New()
	fo := NewMemFileObject(fsys, uri.URI("jcth-mem://root/"), "Bar.java", filekind.Source, true, nil)
	_, err := fo.OpenOutput()
	assert.Error(t, err)
}

func TestArchiveFileObjectIsReadOnly(t *testing.T) {
	content := "class Baz {}"
	fo := NewArchiveFileObject(
		uri.File("/lib/baz.jar"),
		"com/example/Baz.java",
		filekind.Source,
		12345,
		func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(content)), nil },
		nil,
	)

	assert.Equal(t, "Baz.java", fo.Name())
	assert.Equal(t, int64(12345), fo.LastModified())

	r, err := fo.OpenInput()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	assert.Equal(t, content, string(data))

	_, err = fo.OpenOutput()
	assert.Error(t, err)
}
