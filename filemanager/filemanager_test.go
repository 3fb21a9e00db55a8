package filemanager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcth-project/jcth/container"
	"github.com/jcth-project/jcth/containergroup"
	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/harnesserr"
	"github.com/jcth-project/jcth/location"
)

func writeFile(t *testing.T, root, rel, contents string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(contents), 0o644))
}

func TestAddPathCreatesGroupLazily(t *testing.T) {
	fm := New(0)
	loc := location.Standard(location.SourcePath)
	assert.False(t, fm.HasLocation(loc))

	dir := t.TempDir()
	writeFile(t, dir, "com/example/Foo.java", "")
	require.NoError(t, fm.AddPath(loc, dir, true))
	assert.True(t, fm.HasLocation(loc))
}

func TestAddPathsStopsAtFirstFailure(t *testing.T) {
	fm := New(0)
	loc := location.Standard(location.SourcePath)
	err := fm.AddPaths(loc, []string{t.TempDir(), "/definitely/not/a/real/path.jar"}, true)
	// Directory containers never fail eagerly, and archives only fail to
	// open if the file truly cannot be read; this path does not exist so
	// OpenArchive surfaces an error.
	assert.Error(t, err)
}

func TestGetOrCreateGroupClassifiesOutputAndPackage(t *testing.T) {
	fm := New(0)

	outGroup, err := fm.GetOrCreateGroup(location.Standard(location.ClassOutput))
	require.NoError(t, err)
	_, isOutput := outGroup.(*containergroup.Output)
	assert.True(t, isOutput)

	pkgGroup, err := fm.GetOrCreateGroup(location.Standard(location.ClassPath))
	require.NoError(t, err)
	_, isPackage := pkgGroup.(*containergroup.Package)
	assert.True(t, isPackage)
}

func TestGetOrCreateGroupModuleLocationRoutesThroughModuleGroup(t *testing.T) {
	fm := New(0)
	modLoc := location.Module(location.ModuleSourcePath, "com.example.mod")

	g, err := fm.GetOrCreateGroup(modLoc)
	require.NoError(t, err)
	assert.Equal(t, modLoc.String(), g.Location().String())

	parent, ok := fm.groupAt(location.Standard(location.ModuleSourcePath))
	require.True(t, ok)
	_, isModule := parent.(*containergroup.Module)
	assert.True(t, isModule)
}

func TestListGetJavaFileForInputOutputAndInferBinaryName(t *testing.T) {
	fm := New(0)
	srcLoc := location.Standard(location.SourcePath)
	dir := t.TempDir()
	writeFile(t, dir, "com/example/Foo.java", "class Foo {}")
	require.NoError(t, fm.AddPath(srcLoc, dir, true))

	entries, err := fm.List(srcLoc, "com.example", map[filekind.Kind]bool{filekind.Source: true}, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	fo, ok, err := fm.GetJavaFileForInput(srcLoc, "com.example.Foo", filekind.Source)
	require.NoError(t, err)
	require.True(t, ok)

	name, ok := fm.InferBinaryName(srcLoc, fo)
	assert.True(t, ok)
	assert.Equal(t, "com.example.Foo", name)

	assert.True(t, fm.Contains(srcLoc, fo))

	outLoc := location.Standard(location.ClassOutput)
	out, err := fm.GetJavaFileForOutput(outLoc, "com.example.Foo", filekind.Class)
	require.NoError(t, err)
	assert.Equal(t, "com/example/Foo.class", out.Path())
}

func TestListOnMissingLocationReturnsNilNotError(t *testing.T) {
	fm := New(0)
	entries, err := fm.List(location.Standard(location.SourcePath), "com.example", nil, false)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestListLocationsForModules(t *testing.T) {
	fm := New(0)
	modLoc := location.Module(location.ModuleSourcePath, "mod.a")
	_, err := fm.GetOrCreateGroup(modLoc)
	require.NoError(t, err)

	groups, err := fm.ListLocationsForModules(location.Standard(location.ModuleSourcePath))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 1)
	assert.Equal(t, "mod.a", groups[0][0].Name)
}

func TestListLocationsForModulesRejectsNonModuleLocation(t *testing.T) {
	fm := New(0)
	_, err := fm.GetOrCreateGroup(location.Standard(location.ClassPath))
	require.NoError(t, err)

	_, err = fm.ListLocationsForModules(location.Standard(location.ClassPath))
	assert.Error(t, err)
}

func TestGetClassLoaderUnsupportedOnModuleLocation(t *testing.T) {
	fm := New(0)
	parent := location.Standard(location.ModuleSourcePath)
	_, err := fm.GetOrCreateGroup(parent)
	require.NoError(t, err)

	_, _, err = fm.GetClassLoader(parent)
	var unsupported *harnesserr.UnsupportedOnModuleLocationError
	assert.ErrorAs(t, err, &unsupported)
}

func TestGetServiceLoaderRoundTrip(t *testing.T) {
	fm := New(0)
	loc := location.Standard(location.ClassPath)
	dir := t.TempDir()
	writeFile(t, dir, "META-INF/services/com.example.Service", "com.example.Impl\n")
	require.NoError(t, fm.AddPath(loc, dir, true))

	sl, ok, err := fm.GetServiceLoader(loc, "com.example.Service")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"com.example.Impl"}, sl.Providers)
}

func TestRequireModuleFoundAndMissingWithSuggestions(t *testing.T) {
	fm := New(0)
	parent := location.Standard(location.ModuleSourcePath)
	_, err := fm.GetOrCreateGroup(location.Module(location.ModuleSourcePath, "com.example.core"))
	require.NoError(t, err)

	pkg, err := fm.RequireModule(parent, "com.example.core")
	require.NoError(t, err)
	assert.NotNil(t, pkg)

	_, err = fm.RequireModule(parent, "com.example.cor")
	var notFound *harnesserr.ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Suggestions, "com.example.core")
}

func TestRequireModuleMissingParentLocation(t *testing.T) {
	fm := New(0)
	_, err := fm.RequireModule(location.Standard(location.ModuleSourcePath), "anything")
	var notFound *harnesserr.ModuleNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCloseAggregatesGroupFailures(t *testing.T) {
	fm := New(0)
	dir := t.TempDir()
	require.NoError(t, fm.AddPath(location.Standard(location.SourcePath), dir, true))
	require.NoError(t, fm.Close())
	assert.False(t, fm.HasLocation(location.Standard(location.SourcePath)))

	fm2 := New(0)
	classPath := location.Standard(location.ClassPath)
	_, err := fm2.GetOrCreateGroup(classPath)
	require.NoError(t, err)
	require.NoError(t, fm2.AddContainer(classPath, failingCloseContainer{container.NewDirectory(classPath.String(), t.TempDir(), true)}))
	err = fm2.Close()
	var cfe *harnesserr.CloseFailureError
	require.ErrorAs(t, err, &cfe)
	assert.ErrorIs(t, err, errCloseFailed)
}

var errCloseFailed = errors.New("close failed")

// failingCloseContainer is a container whose Close always fails.
type failingCloseContainer struct{ container.Container }

func (failingCloseContainer) Close() error { return errCloseFailed }

func TestAddContainerRequiresContainerAdder(t *testing.T) {
	fm := New(0)
	modParent := location.Standard(location.ModuleSourcePath)
	_, err := fm.GetOrCreateGroup(modParent)
	require.NoError(t, err)

	dir := t.TempDir()
	c := container.NewDirectory(modParent.String(), dir, true)
	err = fm.AddContainer(modParent, c)
	assert.Error(t, err)
}
