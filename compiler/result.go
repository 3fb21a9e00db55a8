package compiler

import (
	"github.com/jcth-project/jcth/diagnostics"
	"github.com/jcth-project/jcth/filemanager"
	"github.com/jcth-project/jcth/fileobj"
)

// CompilationResult is the outcome of one Driver.Compile call. Its slices
// are built afresh by each Compile call and are not shared with the Driver
// or with other results. They are exported fields, not copies: mutating one
// changes this result. Errors and Warnings return newly allocated slices.
type CompilationResult struct {
	OutputLines      []string
	CompilationUnits []fileobj.FileObject
	Diagnostics      []diagnostics.TraceDiagnostic
	Success          bool

	// FailureOnWarnings records whether the warnings-as-errors policy was
	// in effect for this compilation, so callers can distinguish an
	// outright compiler failure from one that only failed because a
	// warning diagnostic was reported under that policy.
	FailureOnWarnings bool

	fileManager *filemanager.FileManager
}

// FileManager returns the FileManager the compilation ran against, so
// callers can inspect CLASS_OUTPUT or any other location after the fact.
func (r *CompilationResult) FileManager() *filemanager.FileManager {
	return r.fileManager
}

// Errors returns only the Error-severity diagnostics, in report order.
func (r *CompilationResult) Errors() []diagnostics.TraceDiagnostic {
	return r.filterKind(diagnostics.Error)
}

// Warnings returns both Warning and MandatoryWarning diagnostics, in report
// order.
func (r *CompilationResult) Warnings() []diagnostics.TraceDiagnostic {
	var out []diagnostics.TraceDiagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == diagnostics.Warning || d.Kind == diagnostics.MandatoryWarning {
			out = append(out, d)
		}
	}
	return out
}

func (r *CompilationResult) filterKind(kind diagnostics.Kind) []diagnostics.TraceDiagnostic {
	var out []diagnostics.TraceDiagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
