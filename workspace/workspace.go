// Package workspace owns the ephemeral path roots a single compilation test
// populates, either backed by a real temp directory or by an in-memory
// filesystem, and guarantees their cleanup on disposal.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/psanford/memfs"
	"go.lsp.dev/uri"

	"github.com/jcth-project/jcth/harnesserr"
	"github.com/jcth-project/jcth/internal/binaryname"
	"github.com/jcth-project/jcth/internal/platformlink"
)

// Strategy selects how a Workspace materialises its PathRoots.
type Strategy int

const (
	InMemory Strategy = iota
	TempDirectory
)

// reservedScheme is the URI scheme the in-memory filesystem's roots are
// addressed under. It must never collide with a standard URL scheme.
const reservedScheme = "jcth-mem"

// registry resolves a reservedScheme URI back to the PathRoot that created
// it, the single documented process-wide registration this module performs
// (the Go analogue of a URL-stream-handler provider: there is no global
// scheme-handler hook in net/url to install into, so callers that need to
// turn a jcth-mem:// URI back into bytes go through this registry instead).
var registry = struct {
	mu    sync.RWMutex
	roots map[uri.URI]*PathRoot
}{roots: make(map[uri.URI]*PathRoot)}

// ResolveURI looks up the PathRoot that owns an in-memory URI previously
// handed out by this package, if any is still registered.
func ResolveURI(u uri.URI) (*PathRoot, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	r, ok := registry.roots[u]
	return r, ok
}

// Workspace is the single-owner scope for every PathRoot used by one
// compilation test. Disposing it removes every root it created.
type Workspace struct {
	strategy Strategy
	mu       sync.Mutex
	roots    []*PathRoot
	tempBase string
}

// New creates a Workspace using strategy. For TempDirectory, it eagerly
// creates a uniquely named base directory under the OS temp location.
func New(strategy Strategy) (*Workspace, error) {
	w := &Workspace{strategy: strategy}
	if strategy == TempDirectory {
		base, err := os.MkdirTemp("", "jcth-ws-*")
		if err != nil {
			return nil, harnesserr.NewFileSystemError("mkdir", base, err)
		}
		w.tempBase = base
	}
	return w, nil
}

// NewRoot creates a new PathRoot labelled name (sanitised to a filesystem
// safe identifier, with a uniqueness suffix appended if another root
// already claimed that name).
func (w *Workspace) NewRoot(name string) (*PathRoot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	safeName := sanitiseName(name)
	safeName = w.uniqueLocked(safeName)

	root := &PathRoot{
		name:     safeName,
		strategy: w.strategy,
	}

	switch w.strategy {
	case InMemory:
		root.memFS = memfs.New()
		root.path = "/"
		root.rootURI = uri.URI(fmt.Sprintf("%s://%s/", reservedScheme, safeName))
		registry.mu.Lock()
		registry.roots[root.rootURI] = root
		registry.mu.Unlock()
	case TempDirectory:
		dir := filepath.Join(w.tempBase, safeName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, harnesserr.NewFileSystemError("mkdir", dir, err)
		}
		root.path = dir
		root.rootURI = uri.File(dir)
	}

	w.roots = append(w.roots, root)
	return root, nil
}

func (w *Workspace) uniqueLocked(name string) string {
	taken := make(map[string]bool, len(w.roots))
	for _, r := range w.roots {
		taken[r.name] = true
	}
	if !taken[name] {
		return name
	}
	for {
		candidate := fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
		if !taken[candidate] {
			return candidate
		}
	}
}

// Close removes every root this workspace created: temp directories are
// unlinked recursively, in-memory filesystems simply drop their last
// reference. Close is idempotent and best-effort — it aggregates every
// per-root failure into a single CloseFailureError rather than stopping at
// the first one.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var causes []error
	if w.strategy == TempDirectory && w.tempBase != "" {
		if err := os.RemoveAll(w.tempBase); err != nil {
			causes = append(causes, harnesserr.NewFileSystemError("remove", w.tempBase, err))
		}
		w.tempBase = ""
	}
	if w.strategy == InMemory {
		registry.mu.Lock()
		for _, r := range w.roots {
			delete(registry.roots, r.rootURI)
		}
		registry.mu.Unlock()
	}
	w.roots = nil
	return harnesserr.NewCloseFailure(causes...)
}

func sanitiseName(name string) string {
	if name == "" {
		return "root"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if binaryname.IsValidIdentifier(string(r)) || r == '-' {
			out = append(out, r)
			continue
		}
		out = append(out, '_')
	}
	return string(out)
}
