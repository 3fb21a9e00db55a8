package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardLocation(t *testing.T) {
	loc := Standard(ClassPath)
	assert.Equal(t, ClassPath, loc.Kind())
	assert.False(t, loc.IsModule())
	assert.Equal(t, "", loc.ModuleName())
	assert.Equal(t, "CLASS_PATH", loc.String())
}

func TestModuleLocation(t *testing.T) {
	loc := Module(ModuleSourcePath, "com.example.mod")
	assert.True(t, loc.IsModule())
	assert.Equal(t, "com.example.mod", loc.ModuleName())
	assert.Equal(t, "MODULE_SOURCE_PATH[com.example.mod]", loc.String())
}

func TestIsOutput(t *testing.T) {
	assert.True(t, Standard(ClassOutput).IsOutput())
	assert.True(t, Standard(SourceOutput).IsOutput())
	assert.True(t, Standard(NativeHeaderOutput).IsOutput())
	assert.False(t, Standard(ClassPath).IsOutput())
}

func TestIsModuleOriented(t *testing.T) {
	assert.True(t, Standard(ModuleSourcePath).IsModuleOriented())
	assert.True(t, Standard(ModulePath).IsModuleOriented())
	assert.False(t, Standard(ClassPath).IsModuleOriented())
}

func TestEqual(t *testing.T) {
	a := Module(ModulePath, "m1")
	b := Module(ModulePath, "m1")
	c := Module(ModulePath, "m2")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Standard(ModulePath)))
}

func TestLocationAsMapKey(t *testing.T) {
	m := map[Location]int{
		Standard(ClassPath):     1,
		Module(ModulePath, "a"): 2,
	}
	m[Module(ModulePath, "a")] = 3
	assert.Len(t, m, 2)
	assert.Equal(t, 3, m[Module(ModulePath, "a")])
}

func TestUnknownKindString(t *testing.T) {
	assert.Equal(t, "StandardKind(99)", StandardKind(99).String())
}
