// Package fileobj defines the FileObject abstraction: a handle to a single
// source, class, or resource file backed either by a real filesystem path
// or by an in-memory filesystem, with a uniform read/write/metadata surface.
package fileobj

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/psanford/memfs"
	"go.lsp.dev/uri"

	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/location"
)

// FileObject is a handle to a single file the file manager can resolve,
// read, and — for output locations — write.
type FileObject interface {
	URI() uri.URI
	Name() string
	Kind() filekind.Kind

	OpenInput() (io.ReadCloser, error)
	OpenOutput() (io.WriteCloser, error)

	LastModified() int64

	// InferBinaryName returns the dotted binary name of this object relative
	// to loc, if the object's path decodes to one.
	InferBinaryName(loc location.Location) (string, bool)

	// Path is the object's path relative to its owning root, using "/" as
	// the separator regardless of host OS.
	Path() string
}

// diskFileObject is backed by a real path on disk.
type diskFileObject struct {
	absPath      string
	relToRoot    string
	name         string
	kind         filekind.Kind
	readOnly     bool
	rootURIBase  uri.URI
	inferBinary  func(location.Location) (string, bool)
}

// NewDiskFileObject builds a FileObject over a real filesystem path.
// relToRoot is the path relative to the container root that owns it, using
// "/" separators; inferBinary implements location-relative binary name
// recovery and may be nil if the object never needs it.
func NewDiskFileObject(absPath, relToRoot string, kind filekind.Kind, readOnly bool, inferBinary func(location.Location) (string, bool)) FileObject {
	return &diskFileObject{
		absPath:     absPath,
		relToRoot:   relToRoot,
		name:        path.Base(relToRoot),
		kind:        kind,
		readOnly:    readOnly,
		inferBinary: inferBinary,
	}
}

func (f *diskFileObject) URI() uri.URI   { return uri.File(f.absPath) }
func (f *diskFileObject) Name() string   { return f.name }
func (f *diskFileObject) Kind() filekind.Kind { return f.kind }
func (f *diskFileObject) Path() string   { return f.relToRoot }

func (f *diskFileObject) OpenInput() (io.ReadCloser, error) {
	return os.Open(f.absPath)
}

func (f *diskFileObject) OpenOutput() (io.WriteCloser, error) {
	if f.readOnly {
		return nil, fmt.Errorf("file %s is backed by a read-only container", f.absPath)
	}
	if err := os.MkdirAll(path.Dir(f.absPath), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(f.absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (f *diskFileObject) LastModified() int64 {
	info, err := os.Stat(f.absPath)
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}

func (f *diskFileObject) InferBinaryName(loc location.Location) (string, bool) {
	if f.inferBinary == nil {
		return "", false
	}
	return f.inferBinary(loc)
}

// memFileObject is backed by a path inside a shared in-memory filesystem
// (rather than a disconnected private buffer), so every FileObject handed
// out for the same PathRoot observes the same data — including writes made
// through a sibling handle. Used for the in-memory Workspace strategy and
// for output containers that never touch disk.
type memFileObject struct {
	fsys        *memfs.FS
	rootURI     uri.URI
	relToRoot   string
	name        string
	kind        filekind.Kind
	readOnly    bool
	inferBinary func(location.Location) (string, bool)
}

// NewMemFileObject builds a FileObject over a path inside fsys, addressed
// externally by rootURI + relToRoot.
func NewMemFileObject(fsys *memfs.FS, rootURI uri.URI, relToRoot string, kind filekind.Kind, readOnly bool, inferBinary func(location.Location) (string, bool)) FileObject {
	return &memFileObject{
		fsys:        fsys,
		rootURI:     rootURI,
		relToRoot:   relToRoot,
		name:        path.Base(relToRoot),
		kind:        kind,
		readOnly:    readOnly,
		inferBinary: inferBinary,
	}
}

func (f *memFileObject) URI() uri.URI        { return f.rootURI + uri.URI("/"+f.relToRoot) }
func (f *memFileObject) Name() string        { return f.name }
func (f *memFileObject) Kind() filekind.Kind { return f.kind }
func (f *memFileObject) Path() string        { return f.relToRoot }

func (f *memFileObject) OpenInput() (io.ReadCloser, error) {
	file, err := f.fsys.Open(f.relToRoot)
	if err != nil {
		return nil, err
	}
	rc, ok := file.(io.ReadCloser)
	if !ok {
		data, readErr := fs.ReadFile(f.fsys, f.relToRoot)
		if readErr != nil {
			return nil, readErr
		}
		_ = file.Close()
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return rc, nil
}

func (f *memFileObject) OpenOutput() (io.WriteCloser, error) {
	if f.readOnly {
		return nil, fmt.Errorf("in-memory file %s is read-only", f.relToRoot)
	}
	if dir := path.Dir(f.relToRoot); dir != "." {
		if err := f.fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &memWriter{fsys: f.fsys, relToRoot: f.relToRoot}, nil
}

func (f *memFileObject) LastModified() int64 {
	info, err := fs.Stat(f.fsys, f.relToRoot)
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}

func (f *memFileObject) InferBinaryName(loc location.Location) (string, bool) {
	if f.inferBinary == nil {
		return "", false
	}
	return f.inferBinary(loc)
}

// memWriter buffers writes until Close, then publishes them with a single
// WriteFile call — truncate-on-open semantics without a torn read of a
// concurrently opened input stream.
type memWriter struct {
	fsys      *memfs.FS
	relToRoot string
	buf       bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriter) Close() error {
	return w.fsys.WriteFile(w.relToRoot, w.buf.Bytes(), 0o644)
}

// archiveFileObject is backed by a single entry inside an open archive. It
// is always read-only: archives are never write targets.
type archiveFileObject struct {
	archiveURI  uri.URI
	relToRoot   string
	name        string
	kind        filekind.Kind
	modTime     int64
	open        func() (io.ReadCloser, error)
	inferBinary func(location.Location) (string, bool)
}

// NewArchiveFileObject builds a read-only FileObject over a single archive
// entry. archiveURI identifies the owning archive; open lazily reopens the
// entry's reader (archive entries cannot be reused across reads).
func NewArchiveFileObject(archiveURI uri.URI, relToRoot string, kind filekind.Kind, modTime int64, open func() (io.ReadCloser, error), inferBinary func(location.Location) (string, bool)) FileObject {
	return &archiveFileObject{
		archiveURI:  archiveURI,
		relToRoot:   relToRoot,
		name:        path.Base(relToRoot),
		kind:        kind,
		modTime:     modTime,
		open:        open,
		inferBinary: inferBinary,
	}
}

func (f *archiveFileObject) URI() uri.URI       { return f.archiveURI + uri.URI("!/"+f.relToRoot) }
func (f *archiveFileObject) Name() string       { return f.name }
func (f *archiveFileObject) Kind() filekind.Kind { return f.kind }
func (f *archiveFileObject) Path() string       { return f.relToRoot }
func (f *archiveFileObject) LastModified() int64 { return f.modTime }

func (f *archiveFileObject) OpenInput() (io.ReadCloser, error) { return f.open() }

func (f *archiveFileObject) OpenOutput() (io.WriteCloser, error) {
	return nil, fmt.Errorf("archive entry %s is read-only", f.relToRoot)
}

func (f *archiveFileObject) InferBinaryName(loc location.Location) (string, bool) {
	if f.inferBinary == nil {
		return "", false
	}
	return f.inferBinary(loc)
}
