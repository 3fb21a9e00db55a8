// Package classloader models the capability-level reflective class loading
// the compilation harness exposes to annotation processors and service
// loader lookups: load a class's bytes by binary name, or locate a resource
// by its relative name, searching an ordered set of containers.
package classloader

import (
	"bufio"
	"io"
	"strings"

	"github.com/jcth-project/jcth/container"
	"github.com/jcth-project/jcth/filekind"
	"github.com/jcth-project/jcth/fileobj"
)

// ClassLoader is the capability surface a ContainerGroup lazily constructs
// over its containers.
type ClassLoader interface {
	// LoadClass returns the raw bytes of binaryName's class file, searching
	// containers in order and returning the first hit.
	LoadClass(binaryName string) ([]byte, bool, error)

	// GetResource locates relativeName, returning the first hit.
	GetResource(relativeName string) (fileobj.FileObject, bool, error)

	// GetResources locates every container's copy of relativeName, in
	// container order.
	GetResources(relativeName string) ([]fileobj.FileObject, error)
}

// composite is a ClassLoader over an ordered, fixed set of containers.
// First-hit semantics mirror ContainerGroup's own file resolution: earlier
// containers shadow later ones.
type composite struct {
	containers []container.Container
}

// New builds a ClassLoader that searches containers in the given order.
// The slice is copied; mutating it afterwards has no effect on the loader.
func New(containers []container.Container) ClassLoader {
	cp := make([]container.Container, len(containers))
	copy(cp, containers)
	return &composite{containers: cp}
}

func (c *composite) LoadClass(binaryName string) ([]byte, bool, error) {
	for _, cont := range c.containers {
		obj, ok, err := cont.GetJavaFileForInput(binaryName, filekind.Class)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		r, err := obj.OpenInput()
		if err != nil {
			return nil, false, err
		}
		data, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	}
	return nil, false, nil
}

func (c *composite) GetResource(relativeName string) (fileobj.FileObject, bool, error) {
	for _, cont := range c.containers {
		obj, ok, err := cont.FindFile(relativeName)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return obj, true, nil
		}
	}
	return nil, false, nil
}

func (c *composite) GetResources(relativeName string) ([]fileobj.FileObject, error) {
	var out []fileobj.FileObject
	for _, cont := range c.containers {
		obj, ok, err := cont.FindFile(relativeName)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

// ServiceLoader holds the binary names of the provider classes a single
// META-INF/services/<service> manifest lists, resolved through a
// ClassLoader the same way the reflective service-loading mechanism does.
type ServiceLoader struct {
	Service   string
	Providers []string
}

// LoadServiceLoader reads META-INF/services/<serviceBinaryName> through cl
// and parses one provider binary name per non-blank, non-comment line.
func LoadServiceLoader(cl ClassLoader, serviceBinaryName string) (*ServiceLoader, error) {
	resourceName := "META-INF/services/" + serviceBinaryName
	obj, ok, err := cl.GetResource(resourceName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ServiceLoader{Service: serviceBinaryName}, nil
	}

	r, err := obj.OpenInput()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var providers []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		providers = append(providers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &ServiceLoader{Service: serviceBinaryName, Providers: providers}, nil
}

