// Package teesink implements a write decorator that simultaneously writes
// to a downstream stream and an in-memory buffer, so the compilation
// driver can both forward the compiler's console output live and retain it
// for the final CompilationResult.
package teesink

import (
	"bytes"
	"io"
	"sync"

	"github.com/jcth-project/jcth/harnesserr"
)

// TeeSink writes every byte to both a downstream io.Writer and an internal
// buffer. Downstream write, buffer append, and the open-state check all
// execute under a single mutex, so Write and Close never interleave.
type TeeSink struct {
	mu         sync.Mutex
	downstream io.Writer
	buf        bytes.Buffer
	closed     bool
}

// New wraps downstream. Writes after Close fail with a ClosedContainerError
// so callers get the same error shape the rest of the harness uses for
// use-after-close.
func New(downstream io.Writer) *TeeSink {
	return &TeeSink{downstream: downstream}
}

func (t *TeeSink) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, &harnesserr.ClosedContainerError{Location: "TeeSink", Path: "<sink>"}
	}
	if _, err := t.buf.Write(p); err != nil {
		return 0, err
	}
	return t.downstream.Write(p)
}

// GetContent returns a consistent snapshot of everything written so far.
func (t *TeeSink) GetContent() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]byte, t.buf.Len())
	copy(out, t.buf.Bytes())
	return out
}

// Close marks the sink closed. Idempotent: closing twice is a no-op.
func (t *TeeSink) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
