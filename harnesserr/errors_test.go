package harnesserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("bad %s", "input")
	assert.Equal(t, "invalid configuration: bad input", err.Error())
}

func TestFileSystemErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewFileSystemError("write", "/tmp/foo", cause)
	assert.Contains(t, err.Error(), "write")
	assert.Contains(t, err.Error(), "/tmp/foo")
	assert.ErrorIs(t, err, cause)
}

func TestCompilerCrashedErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &CompilerCrashedError{Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestCompilerIndeterminateError(t *testing.T) {
	err := &CompilerIndeterminateError{}
	assert.Equal(t, "compiler returned no definitive verdict", err.Error())
}

func TestNewCloseFailureEmpty(t *testing.T) {
	assert.Nil(t, NewCloseFailure())
	assert.Nil(t, NewCloseFailure(nil, nil))
}

func TestNewCloseFailureAggregates(t *testing.T) {
	e1 := errors.New("first")
	e2 := errors.New("second")
	err := NewCloseFailure(e1, nil, e2)
	require.Error(t, err)

	var cfe *CloseFailureError
	require.True(t, errors.As(err, &cfe))
	assert.Equal(t, []error{e1, e2}, cfe.Causes)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestModuleNotFoundError(t *testing.T) {
	bare := &ModuleNotFoundError{Module: "foo"}
	assert.Equal(t, `module "foo" not found`, bare.Error())

	withSuggestions := &ModuleNotFoundError{Module: "foo", Suggestions: []string{"food", "fool"}}
	assert.Contains(t, withSuggestions.Error(), "food")
	assert.Contains(t, withSuggestions.Error(), "fool")
}

func TestUnsupportedOnModuleLocationError(t *testing.T) {
	err := &UnsupportedOnModuleLocationError{Location: "MODULE_SOURCE_PATH"}
	assert.Contains(t, err.Error(), "MODULE_SOURCE_PATH")
}
