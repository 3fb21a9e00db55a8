package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jcth-project/jcth/container"
	"github.com/jcth-project/jcth/diagnostics"
	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/filemanager"
	"github.com/jcth-project/jcth/fileobj"
	"github.com/jcth-project/jcth/flags"
	"github.com/jcth-project/jcth/harnesserr"
	"github.com/jcth-project/jcth/internal/harnesslog"
	"github.com/jcth-project/jcth/internal/lazy"
	"github.com/jcth-project/jcth/location"
	"github.com/jcth-project/jcth/teesink"
	"github.com/jcth-project/jcth/workspace"
)

// localeROOT is the default locale, mirroring the source compiler's notion
// of the root (unlocalised) locale.
const localeROOT = ""

type pendingAdd struct {
	loc      location.Location
	path     string
	root     *workspace.PathRoot
	readOnly bool
}

// Driver is the CompilerDriver: a single compilation run's configuration
// plus the FileManager it accumulates sources and outputs into.
type Driver struct {
	compilerFactory func() (JsrCompiler, error)
	workspace       *workspace.Workspace
	log             logr.Logger

	flagBuilder *flags.Builder

	locale                          string
	includeCurrentClassPath         bool
	includeCurrentPlatformClassPath bool
	fileManagerLoggingMode          diagnostics.LoggingMode
	diagnosticLoggingMode           diagnostics.LoggingMode
	annotationProcessors            []string
	out                             Writer

	pending []pendingAdd
	fm      *lazy.OneShot[*filemanager.FileManager]
}

// Option configures a Driver at construction time, the same func(*T)
// pattern used throughout this module's ancestry for engine-level
// configuration. An Option may fail (e.g. an invalid version string), so
// New stops at and returns the first error encountered.
type Option func(*Driver) error

// New builds a Driver. dialect selects which FlagBuilder token spelling is
// used (Mainline vs Alternate). Options apply in order; New returns the
// first error any Option produces.
func New(ws *workspace.Workspace, compilerFactory func() (JsrCompiler, error), dialect flags.Dialect, opts ...Option) (*Driver, error) {
	d := &Driver{
		compilerFactory:                 compilerFactory,
		workspace:                       ws,
		log:                             harnesslog.Discard(),
		flagBuilder:                     flags.New(dialect),
		locale:                          localeROOT,
		includeCurrentClassPath:         true,
		includeCurrentPlatformClassPath: true,
		out:                             discardWriter{},
	}
	d.fm = lazy.New(func() (*filemanager.FileManager, error) {
		return filemanager.New(d.flagBuilder.EffectiveRelease()), nil
	})
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// WithLogger swaps the logger used for the driver's own diagnostics and,
// when enabled, the file-manager/diagnostic-tracer logging proxies.
func WithLogger(log logr.Logger) Option {
	return func(d *Driver) error { d.log = log; return nil }
}

// WithOutput sets the process-provided stream the TeeSink duplicates
// compiler output into. Defaults to a discarding writer.
func WithOutput(w Writer) Option {
	return func(d *Driver) error { d.out = w; return nil }
}

// WithVerbose toggles -verbose.
func WithVerbose(v bool) Option {
	return func(d *Driver) error { d.flagBuilder.Verbose(v); return nil }
}

// WithPreviewFeatures toggles --enable-preview.
func WithPreviewFeatures(v bool) Option {
	return func(d *Driver) error { d.flagBuilder.PreviewFeatures(v); return nil }
}

// WithWarnings toggles -nowarn when disabled.
func WithWarnings(v bool) Option {
	return func(d *Driver) error { d.flagBuilder.Warnings(v); return nil }
}

// WithWarningsAsErrors toggles -Werror / --failOnWarning depending on
// dialect.
func WithWarningsAsErrors(v bool) Option {
	return func(d *Driver) error { d.flagBuilder.WarningsAsErrors(v); return nil }
}

// WithDeprecationWarnings toggles -deprecation.
func WithDeprecationWarnings(v bool) Option {
	return func(d *Driver) error { d.flagBuilder.DeprecationWarnings(v); return nil }
}

// WithReleaseVersion sets --release V, clearing source/target version.
func WithReleaseVersion(v string) Option {
	return func(d *Driver) error {
		_, err := d.flagBuilder.ReleaseVersion(v)
		return err
	}
}

// WithSourceVersion sets -source V, clearing release_version.
func WithSourceVersion(v string) Option {
	return func(d *Driver) error {
		_, err := d.flagBuilder.SourceVersion(v)
		return err
	}
}

// WithTargetVersion sets -target V, clearing release_version.
func WithTargetVersion(v string) Option {
	return func(d *Driver) error {
		_, err := d.flagBuilder.TargetVersion(v)
		return err
	}
}

// WithAnnotationProcessorOptions sets the -A<opt> list.
func WithAnnotationProcessorOptions(opts []string) Option {
	return func(d *Driver) error { d.flagBuilder.AnnotationProcessorOptions(opts); return nil }
}

// WithRuntimeOptions sets the -J<opt> list.
func WithRuntimeOptions(opts []string) Option {
	return func(d *Driver) error { d.flagBuilder.RuntimeOptions(opts); return nil }
}

// WithExtraOptions sets the verbatim trailing option list.
func WithExtraOptions(opts []string) Option {
	return func(d *Driver) error { d.flagBuilder.ExtraOptions(opts); return nil }
}

// WithLocale overrides the locale diagnostic messages are rendered for.
func WithLocale(locale string) Option {
	return func(d *Driver) error { d.locale = locale; return nil }
}

// WithIncludeCurrentClassPath toggles host-process CLASSPATH discovery.
func WithIncludeCurrentClassPath(v bool) Option {
	return func(d *Driver) error { d.includeCurrentClassPath = v; return nil }
}

// WithIncludeCurrentPlatformClassPath toggles host-process platform
// (bootstrap) class path discovery.
func WithIncludeCurrentPlatformClassPath(v bool) Option {
	return func(d *Driver) error { d.includeCurrentPlatformClassPath = v; return nil }
}

// WithFileManagerLoggingMode wraps the FileManager in a logging proxy at
// the given mode.
func WithFileManagerLoggingMode(mode diagnostics.LoggingMode) Option {
	return func(d *Driver) error { d.fileManagerLoggingMode = mode; return nil }
}

// WithDiagnosticLoggingMode sets the DiagnosticTracer's logging mode.
func WithDiagnosticLoggingMode(mode diagnostics.LoggingMode) Option {
	return func(d *Driver) error { d.diagnosticLoggingMode = mode; return nil }
}

// WithAnnotationProcessors sets the annotation processor class names passed
// to the compiler task.
func WithAnnotationProcessors(names []string) Option {
	return func(d *Driver) error {
		d.annotationProcessors = append([]string(nil), names...)
		return nil
	}
}

// AddPath records path to be added to loc once the FileManager is built.
func (d *Driver) AddPath(loc location.Location, path string, readOnly bool) *Driver {
	d.pending = append(d.pending, pendingAdd{loc: loc, path: path, readOnly: readOnly})
	return d
}

// AddPathRoot records root to be added to loc once the FileManager is
// built.
func (d *Driver) AddPathRoot(loc location.Location, root *workspace.PathRoot) *Driver {
	d.pending = append(d.pending, pendingAdd{loc: loc, root: root})
	return d
}

// FileManager returns the driver's FileManager, building an empty one on
// first access. Pending AddPath/AddPathRoot calls are not applied here;
// Compile applies them.
func (d *Driver) FileManager() (*filemanager.FileManager, error) {
	fm, err := d.fm.Access()
	if err != nil {
		return nil, err
	}
	return fm, nil
}

func (d *Driver) applyPending(fm *filemanager.FileManager) error {
	for _, p := range d.pending {
		var err error
		if p.root != nil {
			err = fm.AddPathRoot(p.loc, p.root)
		} else {
			err = fm.AddPath(p.loc, p.path, p.readOnly)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Compile runs the full orchestration algorithm: build flags, build the
// tracer, finish building the file manager (synthesising defaults and host
// classpath discovery), discover compilation units, invoke the compiler,
// and assemble the result.
func (d *Driver) Compile(ctx context.Context) (*CompilationResult, error) {
	flagsCtx, flagsSpan := startPhase(ctx, phaseBuildFlags)
	tokens := d.flagBuilder.Build()
	flagsSpan.SetAttributes(attribute.Int("compiler.flag_count", len(tokens)))
	flagsSpan.End()

	tracer := diagnostics.New(d.diagnosticLoggingMode, d.log)

	fmCtx, fmSpan := startPhase(flagsCtx, phaseBuildFileManager)
	fm, err := d.fm.Access()
	if err != nil {
		fmSpan.End()
		return nil, err
	}
	if err := d.applyPending(fm); err != nil {
		fmSpan.End()
		return nil, err
	}
	if err := d.finishFileManager(fm); err != nil {
		fmSpan.End()
		return nil, err
	}
	fmSpan.End()

	var fmAPI filemanager.API = fm
	if d.fileManagerLoggingMode != diagnostics.LoggingDisabled {
		fmAPI = filemanager.NewLoggingProxy(fm, d.log, d.fileManagerLoggingMode == diagnostics.LoggingStackTraces)
	}

	discoverCtx, discoverSpan := startPhase(fmCtx, phaseDiscoverUnits)
	units, err := d.discoverCompilationUnits(fm)
	if err != nil {
		discoverSpan.End()
		return nil, err
	}
	discoverSpan.SetAttributes(attribute.Int("compiler.unit_count", len(units)))
	discoverSpan.End()

	sink := teesink.New(d.out)
	defer sink.Close()

	jsrCompiler, err := d.compilerFactory()
	if err != nil {
		return nil, err
	}

	invokeCtx, invokeSpan := startPhase(discoverCtx, phaseInvokeCompiler,
		attribute.Bool("compiler.warnings_as_errors", warningsAsErrorsRequested(tokens)))
	defer invokeSpan.End()

	task, err := jsrCompiler.GetTask(sink, fmAPI, tracer, tokens, d.annotationProcessors, units)
	if err != nil {
		return nil, &harnesserr.CompilerCrashedError{Cause: err}
	}
	task.SetProcessors(d.annotationProcessors)
	task.SetLocale(d.locale)

	verdict, ok, err := task.Call(invokeCtx)
	if err != nil {
		return nil, &harnesserr.CompilerCrashedError{Cause: err}
	}
	if !ok {
		return nil, &harnesserr.CompilerIndeterminateError{}
	}

	_, resultSpan := startPhase(invokeCtx, phaseAssembleResult)
	defer resultSpan.End()

	snapshot := tracer.GetDiagnostics()
	policy := warningsAsErrorsRequested(tokens)
	success := verdict && (!policy || !hasWarnings(snapshot))
	resultSpan.SetAttributes(
		attribute.Bool("compiler.success", success),
		attribute.Int("compiler.diagnostic_count", len(snapshot)),
	)

	return &CompilationResult{
		OutputLines:       strings.Split(string(sink.GetContent()), "\n"),
		CompilationUnits:  units,
		Diagnostics:       snapshot,
		Success:           success,
		FailureOnWarnings: policy,
		fileManager:       fm,
	}, nil
}

func warningsAsErrorsRequested(tokens []string) bool {
	for _, t := range tokens {
		if t == "-Werror" || t == "--failOnWarning" {
			return true
		}
	}
	return false
}

func hasWarnings(ds []diagnostics.TraceDiagnostic) bool {
	for _, d := range ds {
		if d.Kind == diagnostics.Warning || d.Kind == diagnostics.MandatoryWarning {
			return true
		}
	}
	return false
}

// finishFileManager implements algorithm step 3: ensure CLASS_OUTPUT and
// CLASS_PATH exist, optionally discover the host class path and platform
// class path, and add discovered system module roots.
func (d *Driver) finishFileManager(fm *filemanager.FileManager) error {
	classOutputLoc := location.Standard(location.ClassOutput)
	if !fm.HasLocation(classOutputLoc) {
		root, err := d.workspace.NewRoot("classes")
		if err != nil {
			return err
		}
		if err := fm.AddContainer(classOutputLoc, container.NewWrapperDirectory(classOutputLoc.String(), root)); err != nil {
			return err
		}
	}

	classPathLoc := location.Standard(location.ClassPath)
	if _, err := fm.GetOrCreateGroup(classPathLoc); err != nil {
		return err
	}

	if d.includeCurrentClassPath {
		for _, p := range discoverPathListEnv("CLASSPATH") {
			if err := fm.AddPath(classPathLoc, p, true); err != nil {
				return err
			}
		}
	}
	if d.includeCurrentPlatformClassPath {
		platformLoc := location.Standard(location.PlatformClassPath)
		for _, p := range discoverPathListEnv("SUN_BOOT_CLASS_PATH") {
			if err := fm.AddPath(platformLoc, p, true); err != nil {
				return err
			}
		}
	}

	systemModulesLoc := location.Standard(location.SystemModules)
	for _, p := range discoverSystemModuleRoots() {
		if err := fm.AddPath(systemModulesLoc, p, true); err != nil {
			return err
		}
	}

	return nil
}

// discoverPathListEnv splits envVar's value on the platform path-list
// separator, filters duplicates (preserving first occurrence) and entries
// that do not exist on disk.
func discoverPathListEnv(envVar string) []string {
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, entry := range strings.Split(raw, string(os.PathListSeparator)) {
		if entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		if _, err := os.Stat(entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// discoverSystemModuleRoots locates a JRT-style runtime module image under
// JAVA_HOME, if one is configured and present; otherwise it returns no
// roots and SYSTEM_MODULES stays empty (compilers that need it will report
// their own diagnostic).
func discoverSystemModuleRoots() []string {
	javaHome := os.Getenv("JAVA_HOME")
	if javaHome == "" {
		return nil
	}
	jmods := filepath.Join(javaHome, "jmods")
	if info, err := os.Stat(jmods); err == nil && info.IsDir() {
		return []string{jmods}
	}
	return nil
}

// discoverCompilationUnits implements algorithm step 4: recursively list
// every SOURCE kind file under SOURCE_PATH and under each module's
// MODULE_SOURCE_PATH subgroup, deduplicating by identity and sorting for a
// deterministic order.
func (d *Driver) discoverCompilationUnits(fm *filemanager.FileManager) ([]fileobj.FileObject, error) {
	kinds := map[filekind.Kind]bool{filekind.Source: true}

	var units []fileobj.FileObject
	seen := make(map[string]bool)

	add := func(objs []fileobj.FileObject) {
		for _, o := range objs {
			key := fmt.Sprintf("%s!%s", o.URI(), o.Path())
			if seen[key] {
				continue
			}
			seen[key] = true
			units = append(units, o)
		}
	}

	sourcePathLoc := location.Standard(location.SourcePath)
	if fm.HasLocation(sourcePathLoc) {
		objs, err := fm.List(sourcePathLoc, "", kinds, true)
		if err != nil {
			return nil, err
		}
		add(objs)
	}

	moduleSourcePathLoc := location.Standard(location.ModuleSourcePath)
	if fm.HasLocation(moduleSourcePathLoc) {
		groupings, err := fm.ListLocationsForModules(moduleSourcePathLoc)
		if err != nil {
			return nil, err
		}
		for _, grouping := range groupings {
			for _, entry := range grouping {
				objs, err := entry.Package.List("", kinds, true)
				if err != nil {
					return nil, err
				}
				add(objs)
			}
		}
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Path() < units[j].Path() })
	return units, nil
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
