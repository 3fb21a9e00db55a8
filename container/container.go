// Package container abstracts a single searchable unit of class, source, or
// resource files — an on-disk directory, an in-memory directory owned by a
// workspace path root, or a read-only archive — behind one uniform
// lookup/enumerate/read surface.
package container

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/psanford/memfs"

	"github.com/jcth-project/jcth/fileobj"
	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/harnesserr"
	"github.com/jcth-project/jcth/internal/binaryname"
	"github.com/jcth-project/jcth/workspace"
)

// archiveExtensions are the lowercase, case-insensitively matched extensions
// that classify a path as an Archive container rather than a Directory.
var archiveExtensions = map[string]bool{".jar": true, ".zip": true, ".war": true}

// IsArchivePath reports whether p's extension marks it as an archive
// container.
func IsArchivePath(p string) bool {
	return archiveExtensions[strings.ToLower(path.Ext(filepath.ToSlash(p)))]
}

// Container is a single searchable source of class, source, or resource
// files. Every operation is safe for concurrent use by multiple readers;
// writers to the same output container must not race each other.
type Container interface {
	// FindFile resolves relativeResourceName (which must not be absolute)
	// against every root this container owns, returning the first hit.
	FindFile(relativeResourceName string) (fileobj.FileObject, bool, error)

	// GetFileForInput resolves packageName + relativeName to a readable
	// FileObject.
	GetFileForInput(packageName, relativeName string) (fileobj.FileObject, bool, error)

	// GetFileForOutput resolves packageName + relativeName to a writable
	// FileObject, creating parent directories as needed. Fails with
	// ReadOnlyContainerError for archive containers.
	GetFileForOutput(packageName, relativeName string) (fileobj.FileObject, error)

	// GetJavaFileForInput resolves a dotted binary name plus kind to a
	// readable FileObject.
	GetJavaFileForInput(binaryName string, kind filekind.Kind) (fileobj.FileObject, bool, error)

	// List enumerates every file under packageName whose kind is in kinds
	// (all kinds if kinds is empty), recursing into sub-packages iff
	// recurse is true. Order is deterministic: lexicographic per directory
	// level, depth-first.
	List(packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error)

	// InferBinaryName is the inverse of GetJavaFileForInput.
	InferBinaryName(obj fileobj.FileObject) (string, bool)

	// Contains reports whether obj's path is rooted under this container
	// and names a regular file.
	Contains(obj fileobj.FileObject) bool

	// ReadOnly reports whether GetFileForOutput always fails.
	ReadOnly() bool

	// Location names the compiler location this container was added to, for
	// error messages.
	Location() string

	// Close releases any resource this container holds open. Idempotent.
	Close() error
}

// NewFromPath classifies path by extension and returns the matching
// container: an Archive for .jar/.zip/.war (case-insensitive), a Directory
// otherwise. release selects the multi-release overlay an Archive resolves
// against; it is ignored for directories.
func NewFromPath(locationName, path string, readOnly bool, release int) (Container, error) {
	if IsArchivePath(path) {
		return OpenArchive(locationName, path, release)
	}
	return NewDirectory(locationName, path, readOnly), nil
}

// NewWrapperDirectory builds a WrapperDirectory container over an in-memory
// PathRoot, retaining the PathRoot itself so its backing filesystem cannot
// be collected while the container is alive. An on-disk (TempDirectory)
// root has no in-memory filesystem and gets a writable Directory container
// over its path instead.
func NewWrapperDirectory(locationName string, root *workspace.PathRoot) Container {
	if !root.IsInMemory() {
		return NewDirectory(locationName, root.Path(), false)
	}
	return &wrapperDirectoryContainer{locationName: locationName, root: root}
}

// --- Directory -------------------------------------------------------------

type directoryContainer struct {
	locationName string
	root         string
	readOnly     bool
}

// NewDirectory builds a Container rooted at an on-disk directory.
func NewDirectory(locationName, root string, readOnly bool) Container {
	return &directoryContainer{locationName: locationName, root: root, readOnly: readOnly}
}

func (d *directoryContainer) Location() string { return d.locationName }
func (d *directoryContainer) ReadOnly() bool   { return d.readOnly }
func (d *directoryContainer) Close() error     { return nil }

func (d *directoryContainer) resolveKind(relativeName string) filekind.Kind {
	return filekind.FromExtension(path.Ext(relativeName))
}

func (d *directoryContainer) statRel(rel string) (string, bool, error) {
	if path.IsAbs(rel) {
		return "", false, harnesserr.NewConfigurationError("relative resource name %q must not be absolute", rel)
	}
	abs := filepath.Join(d.root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return "", false, nil
	}
	if info.IsDir() {
		return "", false, nil
	}
	return abs, true, nil
}

func (d *directoryContainer) FindFile(rel string) (fileobj.FileObject, bool, error) {
	abs, ok, err := d.statRel(rel)
	if err != nil || !ok {
		return nil, false, err
	}
	kind := d.resolveKind(rel)
	return fileobj.NewDiskFileObject(abs, rel, kind, d.readOnly, nil), true, nil
}

func (d *directoryContainer) GetFileForInput(packageName, relativeName string) (fileobj.FileObject, bool, error) {
	rel := path.Join(binaryname.PackageToRelativeDir(packageName), relativeName)
	return d.FindFile(rel)
}

func (d *directoryContainer) GetFileForOutput(packageName, relativeName string) (fileobj.FileObject, error) {
	if d.readOnly {
		return nil, &harnesserr.ReadOnlyContainerError{Location: d.locationName, Path: d.root}
	}
	rel := path.Join(binaryname.PackageToRelativeDir(packageName), relativeName)
	abs := filepath.Join(d.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, harnesserr.NewFileSystemError("mkdir", abs, err)
	}
	return fileobj.NewDiskFileObject(abs, rel, d.resolveKind(relativeName), false, nil), nil
}

func (d *directoryContainer) GetJavaFileForInput(binaryName string, kind filekind.Kind) (fileobj.FileObject, bool, error) {
	rel := binaryname.ToRelativePath(binaryName, kind)
	return d.FindFile(rel)
}

func (d *directoryContainer) List(packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error) {
	startRel := binaryname.PackageToRelativeDir(packageName)
	startAbs := filepath.Join(d.root, filepath.FromSlash(startRel))

	visited := map[string]bool{}
	var out []fileobj.FileObject

	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		canon, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return nil
		}
		if visited[canon] {
			return nil
		}
		visited[canon] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, e := range entries {
			childRel := path.Join(rel, e.Name())
			childAbs := filepath.Join(dir, e.Name())
			isDir := e.IsDir()
			if !isDir && e.Type()&os.ModeSymlink != 0 {
				if info, statErr := os.Stat(childAbs); statErr == nil && info.IsDir() {
					isDir = true
				}
			}
			if isDir {
				if recurse {
					if err := walk(childAbs, childRel); err != nil {
						return err
					}
				}
				continue
			}
			kind := filekind.FromExtension(path.Ext(e.Name()))
			if len(kinds) > 0 && !kinds[kind] {
				continue
			}
			out = append(out, fileobj.NewDiskFileObject(childAbs, childRel, kind, d.readOnly, nil))
		}
		return nil
	}

	if err := walk(startAbs, startRel); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *directoryContainer) InferBinaryName(obj fileobj.FileObject) (string, bool) {
	return binaryname.InferBinaryName(obj.Path(), obj.Kind())
}

func (d *directoryContainer) Contains(obj fileobj.FileObject) bool {
	abs := filepath.Join(d.root, filepath.FromSlash(obj.Path()))
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// --- WrapperDirectory --------------------------------------------------

// wrapperDirectoryContainer is a Directory container backed by an in-memory
// filesystem owned by a workspace PathRoot, which it retains for its own
// lifetime to prevent the FS from being collected early.
type wrapperDirectoryContainer struct {
	locationName string
	root         *workspace.PathRoot
}

func (w *wrapperDirectoryContainer) fsys() *memfs.FS { return w.root.MemFS() }

func (w *wrapperDirectoryContainer) Location() string { return w.locationName }
func (w *wrapperDirectoryContainer) ReadOnly() bool   { return false }
func (w *wrapperDirectoryContainer) Close() error     { return nil }

func (w *wrapperDirectoryContainer) FindFile(rel string) (fileobj.FileObject, bool, error) {
	if path.IsAbs(rel) {
		return nil, false, harnesserr.NewConfigurationError("relative resource name %q must not be absolute", rel)
	}
	info, err := fs.Stat(w.fsys(), rel)
	if err != nil || info.IsDir() {
		return nil, false, nil
	}
	kind := filekind.FromExtension(path.Ext(rel))
	return fileobj.NewMemFileObject(w.fsys(), w.root.URI(), rel, kind, false, nil), true, nil
}

func (w *wrapperDirectoryContainer) GetFileForInput(packageName, relativeName string) (fileobj.FileObject, bool, error) {
	rel := path.Join(binaryname.PackageToRelativeDir(packageName), relativeName)
	return w.FindFile(rel)
}

func (w *wrapperDirectoryContainer) GetFileForOutput(packageName, relativeName string) (fileobj.FileObject, error) {
	rel := path.Join(binaryname.PackageToRelativeDir(packageName), relativeName)
	kind := filekind.FromExtension(path.Ext(relativeName))
	return fileobj.NewMemFileObject(w.fsys(), w.root.URI(), rel, kind, false, nil), nil
}

func (w *wrapperDirectoryContainer) GetJavaFileForInput(binaryName string, kind filekind.Kind) (fileobj.FileObject, bool, error) {
	rel := binaryname.ToRelativePath(binaryName, kind)
	return w.FindFile(rel)
}

func (w *wrapperDirectoryContainer) List(packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error) {
	startRel := binaryname.PackageToRelativeDir(packageName)
	var out []fileobj.FileObject

	err := fs.WalkDir(w.fsys(), startRel, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if !recurse && p != startRel {
				return fs.SkipDir
			}
			return nil
		}
		kind := filekind.FromExtension(path.Ext(p))
		if len(kinds) > 0 && !kinds[kind] {
			return nil
		}
		out = append(out, fileobj.NewMemFileObject(w.fsys(), w.root.URI(), p, kind, false, nil))
		return nil
	})
	if err != nil {
		return nil, nil
	}
	return out, nil
}

func (w *wrapperDirectoryContainer) InferBinaryName(obj fileobj.FileObject) (string, bool) {
	return binaryname.InferBinaryName(obj.Path(), obj.Kind())
}

func (w *wrapperDirectoryContainer) Contains(obj fileobj.FileObject) bool {
	info, err := fs.Stat(w.fsys(), obj.Path())
	return err == nil && !info.IsDir()
}
