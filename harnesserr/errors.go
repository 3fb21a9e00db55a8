// Package harnesserr defines the error taxonomy surfaced by every layer of
// the compilation testing harness, from workspace setup through driver
// teardown. Each type carries whatever context a human needs to act on it:
// location name, container path, file name, and, where relevant, a fuzzy
// suggestion list.
package harnesserr

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid flag combination, an absolute path
// where a relative one was required, or an unknown location/kind.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// FileSystemError reports an IO failure during workspace setup, listing,
// reading, writing, or closing a container.
type FileSystemError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("filesystem error during %s of %q: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

func NewFileSystemError(op, path string, cause error) *FileSystemError {
	return &FileSystemError{Op: op, Path: path, Err: cause}
}

// ReadOnlyContainerError is returned when an output is attempted against a
// read-only container: an archive, or a directory added read-only.
type ReadOnlyContainerError struct {
	Location string
	Path     string
}

func (e *ReadOnlyContainerError) Error() string {
	return fmt.Sprintf("container for location %s backed by %q is read-only", e.Location, e.Path)
}

// ClosedContainerError is returned when an operation is attempted on a
// container after it has been closed.
type ClosedContainerError struct {
	Location string
	Path     string
}

func (e *ClosedContainerError) Error() string {
	return fmt.Sprintf("container for location %s backed by %q is closed", e.Location, e.Path)
}

// CompilerCrashedError wraps an error raised by the external compiler
// collaborator from GetTask or Task.Call.
type CompilerCrashedError struct {
	Cause error
}

func (e *CompilerCrashedError) Error() string {
	return fmt.Sprintf("compiler crashed: %v", e.Cause)
}

func (e *CompilerCrashedError) Unwrap() error { return e.Cause }

// CompilerIndeterminateError is returned when the compiler's Task.Call
// returns no definitive boolean verdict.
type CompilerIndeterminateError struct{}

func (e *CompilerIndeterminateError) Error() string {
	return "compiler returned no definitive verdict"
}

// CloseFailureError aggregates one or more errors encountered while closing
// containers, container groups, or a workspace's path roots.
type CloseFailureError struct {
	Causes []error
}

func (e *CloseFailureError) Error() string {
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("close failed with %d error(s): %s", len(e.Causes), strings.Join(msgs, "; "))
}

func (e *CloseFailureError) Unwrap() []error { return e.Causes }

// NewCloseFailure returns nil if causes holds no non-nil error, otherwise a
// *CloseFailureError wrapping every non-nil cause.
func NewCloseFailure(causes ...error) error {
	var nonNil []error
	for _, c := range causes {
		if c != nil {
			nonNil = append(nonNil, c)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	return &CloseFailureError{Causes: nonNil}
}

// UnsupportedOnModuleLocationError is returned when a class-loader or
// service-loader lookup is attempted on a module-oriented location, whose
// group has no single class loader.
type UnsupportedOnModuleLocationError struct {
	Location string
}

func (e *UnsupportedOnModuleLocationError) Error() string {
	return fmt.Sprintf("service loader lookups are not supported on module location %s", e.Location)
}

// ModuleNotFoundError reports a missing module, decorated with fuzzy
// suggestions for likely intended names.
type ModuleNotFoundError struct {
	Module      string
	Suggestions []string
}

func (e *ModuleNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("module %q not found", e.Module)
	}
	return fmt.Sprintf("module %q not found, did you mean one of: %s", e.Module, strings.Join(e.Suggestions, ", "))
}
