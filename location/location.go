// Package location defines the closed set of compiler locations the file
// manager resolves containers against, mirroring javax.tools.JavaFileManager
// locations but as a closed Go enum instead of an open interface.
package location

import "fmt"

// StandardKind enumerates every standard location the compiler and its
// plugins can address.
type StandardKind int

const (
	SourcePath StandardKind = iota
	SourceOutput
	ClassPath
	ClassOutput
	AnnotationProcessorPath
	AnnotationProcessorModulePath
	PlatformClassPath
	SystemModules
	ModuleSourcePath
	ModulePath
	UpgradeModulePath
	PatchModulePath
	NativeHeaderOutput
)

var names = map[StandardKind]string{
	SourcePath:                    "SOURCE_PATH",
	SourceOutput:                  "SOURCE_OUTPUT",
	ClassPath:                     "CLASS_PATH",
	ClassOutput:                   "CLASS_OUTPUT",
	AnnotationProcessorPath:       "ANNOTATION_PROCESSOR_PATH",
	AnnotationProcessorModulePath: "ANNOTATION_PROCESSOR_MODULE_PATH",
	PlatformClassPath:             "PLATFORM_CLASS_PATH",
	SystemModules:                 "SYSTEM_MODULES",
	ModuleSourcePath:              "MODULE_SOURCE_PATH",
	ModulePath:                    "MODULE_PATH",
	UpgradeModulePath:             "UPGRADE_MODULE_PATH",
	PatchModulePath:               "PATCH_MODULE_PATH",
	NativeHeaderOutput:            "NATIVE_HEADER_OUTPUT",
}

func (k StandardKind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("StandardKind(%d)", int(k))
}

// outputKinds are locations the driver/compiler may write into.
var outputKinds = map[StandardKind]bool{
	SourceOutput:       true,
	ClassOutput:        true,
	NativeHeaderOutput: true,
}

// moduleOrientedKinds are locations that partition containers per module.
var moduleOrientedKinds = map[StandardKind]bool{
	ModuleSourcePath:              true,
	ModulePath:                    true,
	AnnotationProcessorModulePath: true,
	UpgradeModulePath:             true,
	PatchModulePath:               true,
}

// Location is a tagged variant: either a Standard location, or a Module
// location nested under a module-oriented standard kind.
type Location struct {
	kind       StandardKind
	moduleName string
	isModule   bool
}

// Standard builds a non-module location of the given kind.
func Standard(kind StandardKind) Location {
	return Location{kind: kind}
}

// Module builds a location nested under parent for a specific module name.
// parent must be one of the module-oriented standard kinds.
func Module(parent StandardKind, moduleName string) Location {
	return Location{kind: parent, moduleName: moduleName, isModule: true}
}

// Kind returns the location's (parent, if modular) standard kind.
func (l Location) Kind() StandardKind { return l.kind }

// IsModule reports whether this is a Module(parent, name) location.
func (l Location) IsModule() bool { return l.isModule }

// ModuleName returns the nested module name; empty for non-module locations.
func (l Location) ModuleName() string { return l.moduleName }

// IsOutput reports whether the compiler/tests may write into this location.
func (l Location) IsOutput() bool { return outputKinds[l.kind] }

// IsModuleOriented reports whether the location's parent kind partitions
// containers by module.
func (l Location) IsModuleOriented() bool { return moduleOrientedKinds[l.kind] }

// IsOutputLocation is an alias kept distinct from IsOutput per the data
// model in spec: every output kind is also "the" output location for its
// family (there is exactly one CLASS_OUTPUT, one SOURCE_OUTPUT, etc.).
func (l Location) IsOutputLocation() bool { return l.IsOutput() }

func (l Location) String() string {
	if l.isModule {
		return fmt.Sprintf("%s[%s]", l.kind, l.moduleName)
	}
	return l.kind.String()
}

// Equal reports whether two locations refer to the same bucket: same kind,
// and if modular, the same module name.
func (l Location) Equal(other Location) bool {
	return l.kind == other.kind && l.isModule == other.isModule && l.moduleName == other.moduleName
}
