package filemanager

import (
	"runtime/debug"

	"github.com/go-logr/logr"

	"github.com/jcth-project/jcth/classloader"
	"github.com/jcth-project/jcth/containergroup"
	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/fileobj"
	"github.com/jcth-project/jcth/location"
	"github.com/jcth-project/jcth/workspace"
)

// LoggingProxy wraps an API and emits one structured log line per call,
// optionally with the call-site stack attached. It is transparent: every
// method has identical semantics and return values to the wrapped API.
type LoggingProxy struct {
	inner       API
	log         logr.Logger
	stackTraces bool
}

// NewLoggingProxy wraps inner, logging each call at V(1) through log.
// stackTraces controls whether a serialised call-site stack trace is
// attached to each log entry.
func NewLoggingProxy(inner API, log logr.Logger, stackTraces bool) *LoggingProxy {
	return &LoggingProxy{inner: inner, log: log.WithName("filemanager"), stackTraces: stackTraces}
}

func (p *LoggingProxy) logCall(op string, keysAndValues ...any) {
	if p.stackTraces {
		keysAndValues = append(keysAndValues, "stack", string(debug.Stack()))
	}
	p.log.V(1).Info(op, keysAndValues...)
}

func (p *LoggingProxy) GetOrCreateGroup(loc location.Location) (containergroup.Group, error) {
	p.logCall("get_or_create_group", "location", loc.String())
	return p.inner.GetOrCreateGroup(loc)
}

func (p *LoggingProxy) AddPath(loc location.Location, path string, readOnly bool) error {
	p.logCall("add_path", "location", loc.String(), "path", path, "readOnly", readOnly)
	return p.inner.AddPath(loc, path, readOnly)
}

func (p *LoggingProxy) AddPaths(loc location.Location, paths []string, readOnly bool) error {
	p.logCall("add_paths", "location", loc.String(), "count", len(paths), "readOnly", readOnly)
	return p.inner.AddPaths(loc, paths, readOnly)
}

func (p *LoggingProxy) AddPathRoot(loc location.Location, root *workspace.PathRoot) error {
	p.logCall("add_path_root", "location", loc.String(), "root", root.Name())
	return p.inner.AddPathRoot(loc, root)
}

func (p *LoggingProxy) List(loc location.Location, packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error) {
	p.logCall("list", "location", loc.String(), "package", packageName, "recurse", recurse)
	return p.inner.List(loc, packageName, kinds, recurse)
}

func (p *LoggingProxy) GetJavaFileForInput(loc location.Location, className string, kind filekind.Kind) (fileobj.FileObject, bool, error) {
	p.logCall("get_java_file_for_input", "location", loc.String(), "class", className, "kind", kind.String())
	return p.inner.GetJavaFileForInput(loc, className, kind)
}

func (p *LoggingProxy) GetJavaFileForOutput(loc location.Location, className string, kind filekind.Kind) (fileobj.FileObject, error) {
	p.logCall("get_java_file_for_output", "location", loc.String(), "class", className, "kind", kind.String())
	return p.inner.GetJavaFileForOutput(loc, className, kind)
}

func (p *LoggingProxy) InferBinaryName(loc location.Location, obj fileobj.FileObject) (string, bool) {
	p.logCall("infer_binary_name", "location", loc.String(), "path", obj.Path())
	return p.inner.InferBinaryName(loc, obj)
}

func (p *LoggingProxy) ListLocationsForModules(loc location.Location) ([][]containergroup.ModuleEntry, error) {
	p.logCall("list_locations_for_modules", "location", loc.String())
	return p.inner.ListLocationsForModules(loc)
}

func (p *LoggingProxy) Contains(loc location.Location, obj fileobj.FileObject) bool {
	p.logCall("contains", "location", loc.String(), "path", obj.Path())
	return p.inner.Contains(loc, obj)
}

func (p *LoggingProxy) HasLocation(loc location.Location) bool {
	p.logCall("has_location", "location", loc.String())
	return p.inner.HasLocation(loc)
}

func (p *LoggingProxy) GetClassLoader(loc location.Location) (classloader.ClassLoader, bool, error) {
	p.logCall("get_class_loader", "location", loc.String())
	return p.inner.GetClassLoader(loc)
}

func (p *LoggingProxy) GetServiceLoader(loc location.Location, serviceBinaryName string) (*classloader.ServiceLoader, bool, error) {
	p.logCall("get_service_loader", "location", loc.String(), "service", serviceBinaryName)
	return p.inner.GetServiceLoader(loc, serviceBinaryName)
}

func (p *LoggingProxy) RequireModule(parentLoc location.Location, moduleName string) (*containergroup.Package, error) {
	p.logCall("require_module", "location", parentLoc.String(), "module", moduleName)
	return p.inner.RequireModule(parentLoc, moduleName)
}

func (p *LoggingProxy) Close() error {
	p.logCall("close")
	return p.inner.Close()
}
