// Package filemanager maps compiler locations onto ContainerGroups and
// implements the capability surface the external compiler consumes for all
// file access.
package filemanager

import (
	"sync"

	"github.com/jcth-project/jcth/classloader"
	"github.com/jcth-project/jcth/container"
	"github.com/jcth-project/jcth/containergroup"
	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/fileobj"
	"github.com/jcth-project/jcth/fuzzysuggest"
	"github.com/jcth-project/jcth/harnesserr"
	"github.com/jcth-project/jcth/location"
	"github.com/jcth-project/jcth/workspace"
)

// API is the full capability set a FileManager exposes; LoggingProxy wraps
// an API transparently, so both share this interface.
type API interface {
	GetOrCreateGroup(loc location.Location) (containergroup.Group, error)
	AddPath(loc location.Location, path string, readOnly bool) error
	AddPaths(loc location.Location, paths []string, readOnly bool) error
	AddPathRoot(loc location.Location, root *workspace.PathRoot) error

	List(loc location.Location, packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error)
	GetJavaFileForInput(loc location.Location, className string, kind filekind.Kind) (fileobj.FileObject, bool, error)
	GetJavaFileForOutput(loc location.Location, className string, kind filekind.Kind) (fileobj.FileObject, error)
	InferBinaryName(loc location.Location, obj fileobj.FileObject) (string, bool)

	ListLocationsForModules(loc location.Location) ([][]containergroup.ModuleEntry, error)
	Contains(loc location.Location, obj fileobj.FileObject) bool
	HasLocation(loc location.Location) bool
	GetClassLoader(loc location.Location) (classloader.ClassLoader, bool, error)
	GetServiceLoader(loc location.Location, serviceBinaryName string) (*classloader.ServiceLoader, bool, error)

	RequireModule(parentLoc location.Location, moduleName string) (*containergroup.Package, error)

	Close() error
}

// FileManager is the concrete, undecorated implementation of API.
type FileManager struct {
	mu               sync.Mutex
	effectiveRelease int
	groups           map[location.Location]containergroup.Group
	order            []location.Location
}

// New builds an empty FileManager. effectiveRelease selects the
// multi-release overlay archive containers open against.
func New(effectiveRelease int) *FileManager {
	return &FileManager{
		effectiveRelease: effectiveRelease,
		groups:           make(map[location.Location]containergroup.Group),
	}
}

func (fm *FileManager) GetOrCreateGroup(loc location.Location) (containergroup.Group, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if loc.IsModule() {
		parentLoc := location.Standard(loc.Kind())
		parentGroup, err := fm.getOrCreateLocked(parentLoc)
		if err != nil {
			return nil, err
		}
		mod, ok := parentGroup.(*containergroup.Module)
		if !ok {
			return nil, harnesserr.NewConfigurationError("location %s is not module-oriented", parentLoc)
		}
		return mod.GetOrCreate(loc.ModuleName()), nil
	}
	return fm.getOrCreateLocked(loc)
}

func (fm *FileManager) getOrCreateLocked(loc location.Location) (containergroup.Group, error) {
	if g, ok := fm.groups[loc]; ok {
		return g, nil
	}
	var g containergroup.Group
	switch {
	case loc.IsModuleOriented():
		g = containergroup.NewModule(loc, fm.effectiveRelease)
	case loc.IsOutput():
		g = containergroup.NewOutput(loc, fm.effectiveRelease)
	default:
		g = containergroup.NewPackage(loc, fm.effectiveRelease)
	}
	fm.groups[loc] = g
	fm.order = append(fm.order, loc)
	return g, nil
}

// AddPath delegates to loc's group, creating it first if needed.
func (fm *FileManager) AddPath(loc location.Location, path string, readOnly bool) error {
	g, err := fm.GetOrCreateGroup(loc)
	if err != nil {
		return err
	}
	return g.AddPath(path, readOnly)
}

// AddPaths adds every path in paths to loc's group, stopping at the first
// failure.
func (fm *FileManager) AddPaths(loc location.Location, paths []string, readOnly bool) error {
	g, err := fm.GetOrCreateGroup(loc)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := g.AddPath(p, readOnly); err != nil {
			return err
		}
	}
	return nil
}

// AddPathRoot adds a WrapperDirectory container over root to loc's group.
func (fm *FileManager) AddPathRoot(loc location.Location, root *workspace.PathRoot) error {
	g, err := fm.GetOrCreateGroup(loc)
	if err != nil {
		return err
	}
	return g.AddPathRoot(root)
}

// containerAdder is implemented by *containergroup.Package (and, through
// embedding, *containergroup.Output).
type containerAdder interface {
	AddContainer(container.Container) error
}

// AddContainer seeds loc's group directly with a pre-built container,
// bypassing path classification. Used by the driver to install the default
// CLASS_OUTPUT in-memory directory.
func (fm *FileManager) AddContainer(loc location.Location, c container.Container) error {
	g, err := fm.GetOrCreateGroup(loc)
	if err != nil {
		return err
	}
	adder, ok := g.(containerAdder)
	if !ok {
		return harnesserr.NewConfigurationError("location %s's group does not accept a pre-built container directly", loc)
	}
	return adder.AddContainer(c)
}

func (fm *FileManager) groupAt(loc location.Location) (containergroup.Group, bool) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	g, ok := fm.groups[loc]
	return g, ok
}

func (fm *FileManager) List(loc location.Location, packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error) {
	g, ok := fm.groupAt(loc)
	if !ok {
		return nil, nil
	}
	return g.List(packageName, kinds, recurse)
}

func (fm *FileManager) GetJavaFileForInput(loc location.Location, className string, kind filekind.Kind) (fileobj.FileObject, bool, error) {
	g, ok := fm.groupAt(loc)
	if !ok {
		return nil, false, nil
	}
	return g.GetJavaFileForInput(className, kind)
}

func (fm *FileManager) GetJavaFileForOutput(loc location.Location, className string, kind filekind.Kind) (fileobj.FileObject, error) {
	g, err := fm.GetOrCreateGroup(loc)
	if err != nil {
		return nil, err
	}
	return g.GetJavaFileForOutput(className, kind)
}

func (fm *FileManager) InferBinaryName(loc location.Location, obj fileobj.FileObject) (string, bool) {
	g, ok := fm.groupAt(loc)
	if !ok {
		return "", false
	}
	return g.InferBinaryName(obj)
}

func (fm *FileManager) ListLocationsForModules(loc location.Location) ([][]containergroup.ModuleEntry, error) {
	g, ok := fm.groupAt(loc)
	if !ok {
		return nil, nil
	}
	mod, ok := g.(*containergroup.Module)
	if !ok {
		return nil, harnesserr.NewConfigurationError("location %s is not module-oriented", loc)
	}
	return [][]containergroup.ModuleEntry{mod.ListModules()}, nil
}

func (fm *FileManager) Contains(loc location.Location, obj fileobj.FileObject) bool {
	g, ok := fm.groupAt(loc)
	if !ok {
		return false
	}
	return g.Contains(obj)
}

func (fm *FileManager) HasLocation(loc location.Location) bool {
	_, ok := fm.groupAt(loc)
	return ok
}

// classLoaderHolder is implemented by *containergroup.Package (and, through
// embedding, *containergroup.Output); *containergroup.Module deliberately
// does not implement it.
type classLoaderHolder interface {
	GetClassLoader() (classloader.ClassLoader, error)
}

func (fm *FileManager) GetClassLoader(loc location.Location) (classloader.ClassLoader, bool, error) {
	g, ok := fm.groupAt(loc)
	if !ok {
		return nil, false, nil
	}
	holder, ok := g.(classLoaderHolder)
	if !ok {
		return nil, false, &harnesserr.UnsupportedOnModuleLocationError{Location: loc.String()}
	}
	cl, err := holder.GetClassLoader()
	if err != nil {
		return nil, false, err
	}
	return cl, true, nil
}

func (fm *FileManager) GetServiceLoader(loc location.Location, serviceBinaryName string) (*classloader.ServiceLoader, bool, error) {
	cl, ok, err := fm.GetClassLoader(loc)
	if err != nil || !ok {
		return nil, ok, err
	}
	sl, err := classloader.LoadServiceLoader(cl, serviceBinaryName)
	if err != nil {
		return nil, false, err
	}
	return sl, true, nil
}

// RequireModule looks up moduleName inside the Module group at parentLoc
// without creating it. If absent, it returns a ModuleNotFoundError carrying
// up to three fuzzy suggestions drawn from the modules that do exist.
func (fm *FileManager) RequireModule(parentLoc location.Location, moduleName string) (*containergroup.Package, error) {
	g, ok := fm.groupAt(parentLoc)
	if !ok {
		return nil, &harnesserr.ModuleNotFoundError{Module: moduleName}
	}
	mod, ok := g.(*containergroup.Module)
	if !ok {
		return nil, harnesserr.NewConfigurationError("location %s is not module-oriented", parentLoc)
	}
	entries := mod.ListModules()
	names := make([]string, len(entries))
	for i, e := range entries {
		if e.Name == moduleName {
			return e.Package, nil
		}
		names[i] = e.Name
	}
	suggestions := fuzzysuggest.Suggest(moduleName, names, fuzzysuggest.DefaultLimit, fuzzysuggest.DefaultThreshold)
	return nil, &harnesserr.ModuleNotFoundError{Module: moduleName, Suggestions: suggestions}
}

// Close closes every group this manager created, best-effort, aggregating
// failures into a single CloseFailureError.
func (fm *FileManager) Close() error {
	fm.mu.Lock()
	groups := make([]containergroup.Group, len(fm.order))
	for i, loc := range fm.order {
		groups[i] = fm.groups[loc]
	}
	fm.groups = make(map[location.Location]containergroup.Group)
	fm.order = nil
	fm.mu.Unlock()

	var causes []error
	for _, g := range groups {
		if err := g.Close(); err != nil {
			causes = append(causes, err)
		}
	}
	return harnesserr.NewCloseFailure(causes...)
}
