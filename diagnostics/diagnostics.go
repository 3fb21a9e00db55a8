// Package diagnostics implements the DiagnosticTracer sink the compilation
// driver hands to the external compiler: it captures every reported
// diagnostic synchronously (timestamp, goroutine identity, stack trace),
// appends it to a concurrent FIFO, and optionally emits a structured log
// line per report.
package diagnostics

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/jcth-project/jcth/fileobj"
)

// Kind mirrors the small set of diagnostic severities the external compiler
// reports.
type Kind int

const (
	Error Kind = iota
	Warning
	MandatoryWarning
	Note
	Other
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	case MandatoryWarning:
		return "MANDATORY_WARNING"
	case Note:
		return "NOTE"
	default:
		return "OTHER"
	}
}

// NoPos marks a diagnostic with no associated source position, matching the
// compiler's own sentinel for "unknown position".
const NoPos int64 = -1

// Diagnostic is the carrier a reporting compiler hands to the tracer. It is
// the minimal, compiler-agnostic shape DiagnosticTracer.Report accepts.
type Diagnostic struct {
	Kind    Kind
	Code    string
	Source  fileobj.FileObject
	Start   int64
	End     int64
	Line    int64
	Column  int64
	Message func(locale string) string
}

// LoggingMode selects how much of each reported diagnostic is also emitted
// as a structured log line.
type LoggingMode int

const (
	LoggingDisabled LoggingMode = iota
	LoggingEnabled
	LoggingStackTraces
)

// TraceDiagnostic is an immutable record of one reported Diagnostic,
// decorated with the capture-time context the original diagnostic itself
// does not carry.
type TraceDiagnostic struct {
	Diagnostic

	Timestamp   time.Time
	GoroutineID string
	StackTrace  string
}

// Message renders the diagnostic's text for locale.
func (d TraceDiagnostic) Message(locale string) string {
	if d.Diagnostic.Message == nil {
		return ""
	}
	return d.Diagnostic.Message(locale)
}

// Tracer is the JsrDiagnosticListener adapter: a concurrent, unbounded FIFO
// of TraceDiagnostics plus optional structured logging.
type Tracer struct {
	mode LoggingMode
	log  logr.Logger

	mu    sync.Mutex
	queue []TraceDiagnostic
}

// New builds a Tracer. log is ignored when mode is LoggingDisabled.
func New(mode LoggingMode, log logr.Logger) *Tracer {
	return &Tracer{mode: mode, log: log.WithName("diagnostics")}
}

// Report captures timestamp, goroutine identity, and stack trace
// synchronously on the calling goroutine — always, regardless of logging
// mode — appends the resulting TraceDiagnostic to the queue, and, if
// logging is enabled, emits one structured log line at a severity derived
// from d.Kind. The logging mode only controls whether that log line also
// serialises the captured stack trace.
func (t *Tracer) Report(d Diagnostic) {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	td := TraceDiagnostic{
		Diagnostic:  d,
		Timestamp:   time.Now(),
		GoroutineID: goroutineIDFromStack(stack),
		StackTrace:  stack,
	}

	t.mu.Lock()
	t.queue = append(t.queue, td)
	t.mu.Unlock()

	if t.mode == LoggingDisabled {
		return
	}

	msg := td.Message("")
	if t.mode == LoggingStackTraces {
		msg += "\n\t" + strings.ReplaceAll(strings.TrimRight(td.StackTrace, "\n"), "\n", "\n\t")
	}
	switch d.Kind {
	case Error:
		t.log.Error(fmt.Errorf("%s", msg), "diagnostic", "code", d.Code)
	case Warning, MandatoryWarning:
		t.log.V(0).Info("diagnostic: "+msg, "kind", d.Kind.String(), "code", d.Code)
	default:
		t.log.V(1).Info("diagnostic: "+msg, "kind", d.Kind.String(), "code", d.Code)
	}
}

// GetDiagnostics returns an immutable snapshot of every diagnostic reported
// so far, in FIFO order. Subsequent Report calls never mutate a
// previously-returned snapshot.
func (t *Tracer) GetDiagnostics() []TraceDiagnostic {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := make([]TraceDiagnostic, len(t.queue))
	copy(snapshot, t.queue)
	return snapshot
}

// goroutineIDFromStack extracts the goroutine id from the first line of a
// runtime.Stack dump ("goroutine N [running]:...").
func goroutineIDFromStack(stack string) string {
	fields := strings.Fields(stack)
	if len(fields) < 2 {
		return ""
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return ""
	}
	return fields[1]
}
