// Package compiler implements the end-to-end orchestration — flags, file
// manager setup, compilation-unit discovery, invocation, and result
// assembly — around a third-party compiler supplied through the small
// JsrCompiler factory interface defined here.
package compiler

import (
	"context"

	"github.com/jcth-project/jcth/diagnostics"
	"github.com/jcth-project/jcth/filemanager"
	"github.com/jcth-project/jcth/fileobj"
)

// JsrCompiler is the external collaborator this harness drives: an object
// capable of producing a Task bound to a tee'd output stream, a file
// manager, a diagnostic listener, option flags, annotation classes, and a
// set of compilation units.
type JsrCompiler interface {
	GetTask(
		out Writer,
		fm filemanager.API,
		listener DiagnosticListener,
		options []string,
		classes []string,
		compilationUnits []fileobj.FileObject,
	) (Task, error)

	// SourceVersionNames lists the source-version strings this compiler
	// accepts. The driver does not consult it; FlagBuilder's SourceVersion
	// only checks that its value parses as a version.
	SourceVersionNames() []string
}

// Writer is the minimal io.Writer surface GetTask needs; kept distinct from
// io.Writer only so this file documents the exact capability the compiler
// consumes.
type Writer interface {
	Write(p []byte) (int, error)
}

// DiagnosticListener is the JsrDiagnosticListener capability: a single
// report method, which *diagnostics.Tracer implements.
type DiagnosticListener interface {
	Report(d diagnostics.Diagnostic)
}

// Task is a single, single-use compilation invocation.
type Task interface {
	SetProcessors(processors []string)
	SetLocale(locale string)

	// Call runs the compilation synchronously and returns the compiler's
	// verdict: true/false for a definitive result, ok=false for
	// indeterminate (the driver surfaces this as CompilerIndeterminateError).
	Call(ctx context.Context) (success bool, ok bool, err error)
}
