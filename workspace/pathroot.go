package workspace

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/psanford/memfs"
	"go.lsp.dev/uri"

	"github.com/jcth-project/jcth/fileobj"
	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/harnesserr"
	"github.com/jcth-project/jcth/internal/platformlink"
	"github.com/jcth-project/jcth/location"
)

// PathRoot is a single disposable root directory, either on disk or inside
// an in-memory filesystem. The Workspace that created it owns its lifetime.
type PathRoot struct {
	name     string
	path     string
	strategy Strategy
	memFS    *memfs.FS
	rootURI  uri.URI
}

// Name returns the root's sanitised, unique label.
func (r *PathRoot) Name() string { return r.name }

// Path returns the root's filesystem path: a real absolute path for
// TempDirectory roots, or "/" for InMemory roots (relative to the root's
// own isolated filesystem).
func (r *PathRoot) Path() string { return r.path }

// URI returns the root's base URI.
func (r *PathRoot) URI() uri.URI { return r.rootURI }

// IsInMemory reports whether this root is backed by an in-memory FS.
func (r *PathRoot) IsInMemory() bool { return r.strategy == InMemory }

// MemFS returns the backing in-memory filesystem, or nil for on-disk roots.
// Keeping the handle alive here — rather than letting it be collected once
// the last file object is dropped — is what guarantees the FS invariant in
// the data model: an in-memory root's filesystem stays alive exactly as
// long as the root is referenced.
func (r *PathRoot) MemFS() *memfs.FS { return r.memFS }

// Resolve joins segments onto the root, returning an absolute real path for
// on-disk roots or a root-relative slash path for in-memory roots.
func (r *PathRoot) Resolve(segments ...string) string {
	if r.strategy == InMemory {
		return path.Join(append([]string{"."}, segments...)...)
	}
	return filepath.Join(append([]string{r.path}, segments...)...)
}

// CreateFile materialises a file at segments with the given contents,
// creating any parent directories needed, and returns a FileObject handle
// to it. kind is inferred from the file's extension.
func (r *PathRoot) CreateFile(contents []byte, segments ...string) (fileobj.FileObject, error) {
	rel := path.Join(segments...)
	kind := filekind.FromExtension(path.Ext(rel))

	switch r.strategy {
	case InMemory:
		if err := r.memFS.MkdirAll(path.Dir(rel), 0o755); err != nil && path.Dir(rel) != "." {
			return nil, harnesserr.NewFileSystemError("mkdir", rel, err)
		}
		if err := r.memFS.WriteFile(rel, contents, 0o644); err != nil {
			return nil, harnesserr.NewFileSystemError("write", rel, err)
		}
		return fileobj.NewMemFileObject(r.memFS, r.rootURI, rel, kind, false, nil), nil
	default:
		abs := r.Resolve(segments...)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, harnesserr.NewFileSystemError("mkdir", abs, err)
		}
		if err := os.WriteFile(abs, contents, 0o644); err != nil {
			return nil, harnesserr.NewFileSystemError("write", abs, err)
		}
		return fileobj.NewDiskFileObject(abs, rel, kind, false, func(location.Location) (string, bool) { return "", false }), nil
	}
}

// CreateFileLines is a convenience over CreateFile for text sources, joining
// lines with "\n" and appending a trailing newline.
func (r *PathRoot) CreateFileLines(lines []string, segments ...string) (fileobj.FileObject, error) {
	var buf []byte
	for _, l := range lines {
		buf = append(buf, []byte(l)...)
		buf = append(buf, '\n')
	}
	return r.CreateFile(buf, segments...)
}

// CopyTreeFrom recursively copies sourcePath (a real, on-disk directory,
// typically a fixture checked into the test) into this root, preserving
// relative layout. On TempDirectory roots, individual files are hard-linked
// or symlinked when the target filesystem supports it (see
// internal/platformlink), falling back to a byte copy otherwise. InMemory
// roots always byte-copy, since the in-memory filesystem this module uses
// has no link syscalls to fall back from.
func (r *PathRoot) CopyTreeFrom(sourcePath string) error {
	return filepath.WalkDir(sourcePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(sourcePath, p)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			return nil
		}
		if r.strategy == InMemory {
			data, readErr := os.ReadFile(p)
			if readErr != nil {
				return harnesserr.NewFileSystemError("read", p, readErr)
			}
			_, writeErr := r.CreateFile(data, filepath.ToSlash(rel))
			return writeErr
		}

		dest := r.Resolve(filepath.ToSlash(rel))
		if mkErr := os.MkdirAll(filepath.Dir(dest), 0o755); mkErr != nil {
			return harnesserr.NewFileSystemError("mkdir", dest, mkErr)
		}
		if _, linkErr := platformlink.Link(p, dest); linkErr != nil {
			return harnesserr.NewFileSystemError("link", dest, linkErr)
		}
		return nil
	})
}

