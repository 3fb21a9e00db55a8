package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcth-project/jcth/diagnostics"
)

func TestCompilationResultErrorsAndWarningsFilterBySeverity(t *testing.T) {
	result := &CompilationResult{
		Diagnostics: []diagnostics.TraceDiagnostic{
			{Diagnostic: diagnostics.Diagnostic{Kind: diagnostics.Error, Code: "compiler.err.syntax"}},
			{Diagnostic: diagnostics.Diagnostic{Kind: diagnostics.Warning, Code: "compiler.warn.unchecked"}},
			{Diagnostic: diagnostics.Diagnostic{Kind: diagnostics.MandatoryWarning, Code: "compiler.warn.deprecated"}},
			{Diagnostic: diagnostics.Diagnostic{Kind: diagnostics.Note, Code: "compiler.note.processing"}},
		},
	}

	errs := result.Errors()
	assert.Len(t, errs, 1)
	assert.Equal(t, "compiler.err.syntax", errs[0].Code)

	warnings := result.Warnings()
	assert.Len(t, warnings, 2)
	assert.Equal(t, "compiler.warn.unchecked", warnings[0].Code)
	assert.Equal(t, "compiler.warn.deprecated", warnings[1].Code)
}

func TestCompilationResultFileManagerReturnsNilWhenUnset(t *testing.T) {
	result := &CompilationResult{}
	assert.Nil(t, result.FileManager())
}
