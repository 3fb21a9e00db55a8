// Package containergroup implements the ordered sets of containers bound to
// a single compiler location: a Package group for ordinary source/class
// locations, an Output group that restricts writes to its first container,
// and a Module group that lazily creates one nested Package per module name.
package containergroup

import (
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jcth-project/jcth/classloader"
	"github.com/jcth-project/jcth/container"
	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/fileobj"
	"github.com/jcth-project/jcth/harnesserr"
	"github.com/jcth-project/jcth/internal/lazy"
	"github.com/jcth-project/jcth/location"
	"github.com/jcth-project/jcth/workspace"
)

// Group is the capability set common to every ContainerGroup variant.
type Group interface {
	Location() location.Location

	AddPath(path string, readOnly bool) error
	AddPathRoot(root *workspace.PathRoot) error

	List(packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error)
	GetJavaFileForInput(binaryName string, kind filekind.Kind) (fileobj.FileObject, bool, error)
	GetJavaFileForOutput(binaryName string, kind filekind.Kind) (fileobj.FileObject, error)
	InferBinaryName(obj fileobj.FileObject) (string, bool)
	Contains(obj fileobj.FileObject) bool

	Close() error
}

// splitBinaryName separates a dotted binary name into its package and
// simple name, mirroring how GetJavaFileForInput/Output address a single
// container.
func splitBinaryName(binaryName string) (pkg, simple string) {
	if i := strings.LastIndexByte(binaryName, '.'); i >= 0 {
		return binaryName[:i], binaryName[i+1:]
	}
	return "", binaryName
}

// Package is the ordinary ContainerGroup variant: an ordered container set
// plus a lazily constructed, thread-safe classloader.
type Package struct {
	loc     location.Location
	release int

	mu         sync.Mutex
	containers []container.Container
	cl         *lazy.OneShot[classloader.ClassLoader]
}

// NewPackage builds an empty Package group for loc, using release when
// classifying and opening archive containers added later.
func NewPackage(loc location.Location, release int) *Package {
	p := &Package{loc: loc, release: release}
	p.cl = lazy.New(func() (classloader.ClassLoader, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		return classloader.New(p.containers), nil
	})
	return p
}

func (p *Package) Location() location.Location { return p.loc }

func (p *Package) addContainer(c container.Container) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.containers = append(p.containers, c)
	p.cl.Destroy()
}

// AddPath classifies path by extension and appends the resulting container.
func (p *Package) AddPath(path string, readOnly bool) error {
	c, err := container.NewFromPath(p.loc.String(), path, readOnly, p.release)
	if err != nil {
		return err
	}
	p.addContainer(c)
	return nil
}

// AddPathRoot always appends a WrapperDirectory over root, regardless of
// whether root is in-memory or temp-directory backed, retaining the root so
// its backing filesystem cannot be collected early.
func (p *Package) AddPathRoot(root *workspace.PathRoot) error {
	p.addContainer(container.NewWrapperDirectory(p.loc.String(), root))
	return nil
}

// AddContainer appends a pre-built container directly, bypassing path
// classification. Used to seed a synthesised default container (e.g. the
// driver's fallback CLASS_OUTPUT directory).
func (p *Package) AddContainer(c container.Container) error {
	p.addContainer(c)
	return nil
}

func (p *Package) snapshot() []container.Container {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]container.Container, len(p.containers))
	copy(cp, p.containers)
	return cp
}

// List unions every container's listing for packageName; stable order, no
// deduplication across containers.
func (p *Package) List(packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error) {
	var out []fileobj.FileObject
	for _, c := range p.snapshot() {
		entries, err := c.List(packageName, kinds, recurse)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

// GetJavaFileForInput returns the first container's hit, in declaration
// order.
func (p *Package) GetJavaFileForInput(binaryName string, kind filekind.Kind) (fileobj.FileObject, bool, error) {
	for _, c := range p.snapshot() {
		obj, ok, err := c.GetJavaFileForInput(binaryName, kind)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return obj, true, nil
		}
	}
	return nil, false, nil
}

// GetJavaFileForOutput resolves against containers[0].
func (p *Package) GetJavaFileForOutput(binaryName string, kind filekind.Kind) (fileobj.FileObject, error) {
	containers := p.snapshot()
	if len(containers) == 0 {
		return nil, harnesserr.NewConfigurationError("location %s has no containers to write into", p.loc)
	}
	pkg, simple := splitBinaryName(binaryName)
	return containers[0].GetFileForOutput(pkg, simple+kind.Extension())
}

func (p *Package) InferBinaryName(obj fileobj.FileObject) (string, bool) {
	for _, c := range p.snapshot() {
		if c.Contains(obj) {
			return c.InferBinaryName(obj)
		}
	}
	return "", false
}

func (p *Package) Contains(obj fileobj.FileObject) bool {
	for _, c := range p.snapshot() {
		if c.Contains(obj) {
			return true
		}
	}
	return false
}

// GetClassLoader lazily builds (and caches) a ClassLoader over this group's
// current containers. It is safe for concurrent use; only one caller
// actually invokes the underlying constructor.
func (p *Package) GetClassLoader() (classloader.ClassLoader, error) {
	return p.cl.Access()
}

func (p *Package) Close() error {
	p.mu.Lock()
	containers := p.containers
	p.containers = nil
	p.mu.Unlock()
	p.cl.Destroy()

	var g errgroup.Group
	errs := make([]error, len(containers))
	for i, c := range containers {
		i, c := i, c
		g.Go(func() error {
			errs[i] = c.Close()
			return nil
		})
	}
	_ = g.Wait()
	return harnesserr.NewCloseFailure(errs...)
}

// Output is a Package with the additional guarantee that output operations
// always target containers[0]. An Output group may be built with no
// containers; output operations on it then fail with a ConfigurationError.
type Output struct {
	*Package
}

// NewOutput builds an Output group, optionally seeded with initial
// containers (containers[0] becomes the sole write target).
func NewOutput(loc location.Location, release int, initial ...container.Container) *Output {
	p := NewPackage(loc, release)
	for _, c := range initial {
		p.addContainer(c)
	}
	return &Output{Package: p}
}

// Module lazily creates one nested Package per module name on first
// reference.
type Module struct {
	loc     location.Location
	release int

	mu      sync.Mutex
	order   []string
	modules map[string]*Package
}

// NewModule builds an empty Module group for loc.
func NewModule(loc location.Location, release int) *Module {
	return &Module{loc: loc, release: release, modules: make(map[string]*Package)}
}

func (m *Module) Location() location.Location { return m.loc }

// GetOrCreate returns the nested Package for moduleName, creating it (with
// no containers) on first reference. Idempotent under concurrent access.
func (m *Module) GetOrCreate(moduleName string) *Package {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.modules[moduleName]; ok {
		return p
	}
	p := NewPackage(location.Module(m.loc.Kind(), moduleName), m.release)
	m.modules[moduleName] = p
	m.order = append(m.order, moduleName)
	return p
}

// ModuleEntry pairs a module name with its nested Package group.
type ModuleEntry struct {
	Name    string
	Package *Package
}

// ListModules returns every (name, Package) pair in insertion order.
func (m *Module) ListModules() []ModuleEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ModuleEntry, len(m.order))
	for i, name := range m.order {
		out[i] = ModuleEntry{Name: name, Package: m.modules[name]}
	}
	return out
}

func (m *Module) AddPath(string, bool) error {
	return harnesserr.NewConfigurationError("cannot add a bare path directly to module-oriented location %s; call GetOrCreate(moduleName) first", m.loc)
}

func (m *Module) AddPathRoot(*workspace.PathRoot) error {
	return harnesserr.NewConfigurationError("cannot add a bare path root directly to module-oriented location %s; call GetOrCreate(moduleName) first", m.loc)
}

func (m *Module) List(packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error) {
	var out []fileobj.FileObject
	for _, entry := range m.ListModules() {
		entries, err := entry.Package.List(packageName, kinds, recurse)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

func (m *Module) GetJavaFileForInput(binaryName string, kind filekind.Kind) (fileobj.FileObject, bool, error) {
	for _, entry := range m.ListModules() {
		obj, ok, err := entry.Package.GetJavaFileForInput(binaryName, kind)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return obj, true, nil
		}
	}
	return nil, false, nil
}

func (m *Module) GetJavaFileForOutput(binaryName string, kind filekind.Kind) (fileobj.FileObject, error) {
	return nil, harnesserr.NewConfigurationError("location %s is module-oriented; resolve a specific module's Package first", m.loc)
}

func (m *Module) InferBinaryName(obj fileobj.FileObject) (string, bool) {
	for _, entry := range m.ListModules() {
		if name, ok := entry.Package.InferBinaryName(obj); ok {
			return name, true
		}
	}
	return "", false
}

func (m *Module) Contains(obj fileobj.FileObject) bool {
	for _, entry := range m.ListModules() {
		if entry.Package.Contains(obj) {
			return true
		}
	}
	return false
}

func (m *Module) Close() error {
	entries := m.ListModules()
	var g errgroup.Group
	errs := make([]error, len(entries))
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			errs[i] = e.Package.Close()
			return nil
		})
	}
	_ = g.Wait()

	m.mu.Lock()
	m.modules = make(map[string]*Package)
	m.order = nil
	m.mu.Unlock()

	return harnesserr.NewCloseFailure(errs...)
}
