// Package harnesslog wires a concrete logging backend behind logr.Logger,
// the interface every other package in this module accepts. Swapping the
// backend (or verbosity) never requires touching a component.
package harnesslog

import (
	"os"

	"github.com/bombsimon/logrusr/v3"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
)

// New returns a logr.Logger backed by logrus, writing text-formatted lines
// to stdout at the given verbosity (0 is Info-only; higher numbers surface
// the V(n) calls components make for low-signal tracing).
func New(verbosity int) logr.Logger {
	logrusLog := logrus.New()
	logrusLog.SetOutput(os.Stdout)
	logrusLog.SetFormatter(&logrus.TextFormatter{})
	logrusLog.SetLevel(logrus.Level(verbosity + 4))
	return logrusr.New(logrusLog).WithName("jcth")
}

// Discard returns a logger that drops everything, for tests that don't care
// about log output.
func Discard() logr.Logger {
	return logr.Discard()
}
