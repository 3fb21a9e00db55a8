package binaryname

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcth-project/jcth/filekind"
)

func TestToRelativePath(t *testing.T) {
	tests := []struct {
		name       string
		binaryName string
		kind       filekind.Kind
		want       string
	}{
		{"simple", "Foo", filekind.Source, "Foo.java"},
		{"packaged", "com.example.Foo", filekind.Source, "com/example/Foo.java"},
		{"class kind", "com.example.Foo", filekind.Class, "com/example/Foo.class"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToRelativePath(tt.binaryName, tt.kind))
		})
	}
}

func TestPackageToRelativeDir(t *testing.T) {
	assert.Equal(t, ".", PackageToRelativeDir(""))
	assert.Equal(t, "com/example", PackageToRelativeDir("com.example"))
}

func TestDirToPackage(t *testing.T) {
	assert.Equal(t, "", DirToPackage(""))
	assert.Equal(t, "", DirToPackage("."))
	assert.Equal(t, "com.example", DirToPackage("com/example"))
}

func TestInferBinaryName(t *testing.T) {
	name, ok := InferBinaryName("com/example/Foo.java", filekind.Source)
	assert.True(t, ok)
	assert.Equal(t, "com.example.Foo", name)

	_, ok = InferBinaryName("com/example/Foo.class", filekind.Source)
	assert.False(t, ok)

	_, ok = InferBinaryName("com/1example/Foo.java", filekind.Source)
	assert.False(t, ok)
}

func TestIsValidIdentifier(t *testing.T) {
	assert.True(t, IsValidIdentifier("Foo"))
	assert.True(t, IsValidIdentifier("_foo$1"))
	assert.False(t, IsValidIdentifier(""))
	assert.False(t, IsValidIdentifier("1Foo"))
}

func TestIsValidBinaryName(t *testing.T) {
	assert.True(t, IsValidBinaryName("com.example.Foo"))
	assert.False(t, IsValidBinaryName("com.1example.Foo"))
	assert.False(t, IsValidBinaryName(""))
}
