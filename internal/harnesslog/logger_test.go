package harnesslog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReturnsUsableLogger(t *testing.T) {
	log := New(0)
	assert.NotPanics(t, func() { log.Info("hello") })
	assert.NotPanics(t, func() { log.V(1).Info("verbose") })
}

func TestNewHigherVerbositySurfacesVLogs(t *testing.T) {
	log := New(2)
	assert.True(t, log.V(1).Enabled())
}

func TestDiscardSuppressesOutput(t *testing.T) {
	log := Discard()
	assert.NotPanics(t, func() { log.Info("should be dropped") })
	assert.False(t, log.Enabled())
}
