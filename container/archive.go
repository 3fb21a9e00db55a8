package container

import (
	"bytes"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	kzip "github.com/klauspost/compress/zip"
	"go.lsp.dev/uri"

	"github.com/jcth-project/jcth/fileobj"
	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/harnesserr"
	"github.com/jcth-project/jcth/internal/binaryname"
)

const multiReleasePrefix = "META-INF/versions/"

// archiveContainer is a read-only container backed by a zip-family archive
// (.jar, .zip, .war). Multiple Archive containers may reference the same
// underlying file without locking each other; each opens its own reader.
type archiveContainer struct {
	locationName string
	archivePath  string
	archiveURI   uri.URI
	release      int

	mu     sync.RWMutex
	reader *kzip.ReadCloser
	closed bool

	// entries maps the resolved relative path (after multi-release overlay)
	// to the zip.File that should serve it.
	entries map[string]*kzip.File
	// packageIndex maps a dotted package name to every relative path directly
	// inside that package's directory, sorted. List does not consult it; it
	// scans entries.
	packageIndex map[string][]string
}

// OpenArchive opens path as a read-only Archive container, eagerly indexing
// every entry (after applying the multi-release overlay for release, if the
// archive declares one) so that subsequent lookups are O(1).
func OpenArchive(locationName, path string, release int) (Container, error) {
	r, err := kzip.OpenReader(path)
	if err != nil {
		return nil, harnesserr.NewFileSystemError("open", path, err)
	}

	c := &archiveContainer{
		locationName: locationName,
		archivePath:  path,
		archiveURI:   uri.File(path),
		release:      release,
		reader:       r,
		entries:      make(map[string]*kzip.File),
		packageIndex: make(map[string][]string),
	}
	c.buildIndex()
	return c, nil
}

// buildIndex walks every entry in the archive, applies the multi-release
// overlay (an entry under META-INF/versions/N/ replaces the base entry at
// the same relative path whenever N <= c.release, preferring the highest
// such N), and records each resulting relative path's binary package under
// packageIndex.
func (c *archiveContainer) buildIndex() {
	base := make(map[string]*kzip.File)
	overlays := make(map[int]map[string]*kzip.File)

	for _, f := range c.reader.File {
		name := strings.TrimPrefix(f.Name, "/")
		if strings.HasPrefix(name, multiReleasePrefix) {
			rest := strings.TrimPrefix(name, multiReleasePrefix)
			slash := strings.IndexByte(rest, '/')
			if slash < 0 {
				continue
			}
			verStr, relPath := rest[:slash], rest[slash+1:]
			ver, err := strconv.Atoi(verStr)
			if err != nil || relPath == "" || strings.HasSuffix(relPath, "/") {
				continue
			}
			if overlays[ver] == nil {
				overlays[ver] = make(map[string]*kzip.File)
			}
			overlays[ver][relPath] = f
			continue
		}
		if strings.HasSuffix(name, "/") || name == "" {
			continue
		}
		base[name] = f
	}

	versions := make([]int, 0, len(overlays))
	for v := range overlays {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	for _, v := range versions {
		if v > c.release {
			continue
		}
		for relPath, f := range overlays[v] {
			base[relPath] = f
		}
	}

	for relPath, f := range base {
		c.entries[relPath] = f
		pkg := binaryname.DirToPackage(path.Dir(relPath))
		c.packageIndex[pkg] = append(c.packageIndex[pkg], relPath)
	}
	for pkg := range c.packageIndex {
		sort.Strings(c.packageIndex[pkg])
	}
}

func (c *archiveContainer) Location() string { return c.locationName }
func (c *archiveContainer) ReadOnly() bool   { return true }

func (c *archiveContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.reader.Close(); err != nil {
		return harnesserr.NewFileSystemError("close", c.archivePath, err)
	}
	return nil
}

func (c *archiveContainer) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return &harnesserr.ClosedContainerError{Location: c.locationName, Path: c.archivePath}
	}
	return nil
}

func (c *archiveContainer) openEntry(f *kzip.File) (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		if err := c.checkOpen(); err != nil {
			return nil, err
		}
		rc, err := f.Open()
		if err != nil {
			return nil, harnesserr.NewFileSystemError("read", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, harnesserr.NewFileSystemError("read", f.Name, err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}()
}

func (c *archiveContainer) fileObjectFor(rel string, f *kzip.File) fileobj.FileObject {
	kind := filekind.FromExtension(path.Ext(rel))
	modTime := f.Modified.Unix()
	entry := f
	return fileobj.NewArchiveFileObject(c.archiveURI, rel, kind, modTime, func() (io.ReadCloser, error) {
		return c.openEntry(entry)
	}, nil)
}

func (c *archiveContainer) FindFile(rel string) (fileobj.FileObject, bool, error) {
	if path.IsAbs(rel) {
		return nil, false, harnesserr.NewConfigurationError("relative resource name %q must not be absolute", rel)
	}
	if err := c.checkOpen(); err != nil {
		return nil, false, err
	}
	c.mu.RLock()
	f, ok := c.entries[rel]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return c.fileObjectFor(rel, f), true, nil
}

func (c *archiveContainer) GetFileForInput(packageName, relativeName string) (fileobj.FileObject, bool, error) {
	rel := path.Join(binaryname.PackageToRelativeDir(packageName), relativeName)
	return c.FindFile(rel)
}

func (c *archiveContainer) GetFileForOutput(packageName, relativeName string) (fileobj.FileObject, error) {
	return nil, &harnesserr.ReadOnlyContainerError{Location: c.locationName, Path: c.archivePath}
}

func (c *archiveContainer) GetJavaFileForInput(binaryName string, kind filekind.Kind) (fileobj.FileObject, bool, error) {
	rel := binaryname.ToRelativePath(binaryName, kind)
	return c.FindFile(rel)
}

func (c *archiveContainer) List(packageName string, kinds map[filekind.Kind]bool, recurse bool) ([]fileobj.FileObject, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	dir := binaryname.PackageToRelativeDir(packageName)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []fileobj.FileObject
	for rel, f := range c.entries {
		relDir := path.Dir(rel)
		if !withinPackageDir(relDir, dir, recurse) {
			continue
		}
		kind := filekind.FromExtension(path.Ext(rel))
		if len(kinds) > 0 && !kinds[kind] {
			continue
		}
		out = append(out, c.fileObjectFor(rel, f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path() < out[j].Path() })
	return out, nil
}

func withinPackageDir(candidateDir, packageDir string, recurse bool) bool {
	if packageDir == "." {
		if recurse {
			return true
		}
		return candidateDir == "."
	}
	if candidateDir == packageDir {
		return true
	}
	if recurse {
		return strings.HasPrefix(candidateDir, packageDir+"/")
	}
	return false
}

func (c *archiveContainer) InferBinaryName(obj fileobj.FileObject) (string, bool) {
	return binaryname.InferBinaryName(obj.Path(), obj.Kind())
}

func (c *archiveContainer) Contains(obj fileobj.FileObject) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[obj.Path()]
	return ok
}
