// Package binaryname converts between dot-separated binary names
// (com.example.Foo) and the relative filesystem paths a container stores
// them under, and validates the identifier characters the source language
// allows in a package or type name component.
package binaryname

import (
	"path"
	"strings"
	"unicode"

	"github.com/jcth-project/jcth/filekind"
)

// ToRelativePath converts a dotted binary name into a slash-separated
// relative path with the given kind's extension appended, e.g.
// "com.example.Foo" + Source -> "com/example/Foo.java".
func ToRelativePath(binaryName string, kind filekind.Kind) string {
	parts := strings.Split(binaryName, ".")
	return path.Join(parts...) + kind.Extension()
}

// PackageToRelativeDir converts a dotted package name into a slash-separated
// relative directory path, e.g. "com.example" -> "com/example". The empty
// package maps to ".".
func PackageToRelativeDir(packageName string) string {
	if packageName == "" {
		return "."
	}
	return path.Join(strings.Split(packageName, ".")...)
}

// DirToPackage is the inverse of PackageToRelativeDir: it joins path
// components with ".". It does not validate identifier characters; callers
// that need that should use IsValidIdentifier per component.
func DirToPackage(relativeDir string) string {
	if relativeDir == "" || relativeDir == "." {
		return ""
	}
	parts := strings.Split(path.Clean(relativeDir), "/")
	return strings.Join(parts, ".")
}

// InferBinaryName attempts to recover a dotted binary name from a path
// relative to some container root, given the file's kind. It returns false
// if the basename doesn't carry kind's extension, or if any intermediate
// component is not a valid identifier.
func InferBinaryName(relativePath string, kind filekind.Kind) (string, bool) {
	ext := kind.Extension()
	if ext == "" || !strings.HasSuffix(relativePath, ext) {
		return "", false
	}
	trimmed := strings.TrimSuffix(relativePath, ext)
	parts := strings.Split(path.Clean(trimmed), "/")
	for _, p := range parts {
		if !IsValidIdentifier(p) {
			return "", false
		}
	}
	return strings.Join(parts, "."), true
}

// IsValidIdentifier reports whether s is a legal source-language identifier:
// non-empty, starts with a letter/underscore/dollar, and every subsequent
// rune is a letter, digit, underscore, or dollar sign.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isIdentifierStart(r) {
				return false
			}
			continue
		}
		if !isIdentifierPart(r) {
			return false
		}
	}
	return true
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r)
}

// IsValidBinaryName reports whether every dot-separated component of name is
// a valid identifier.
func IsValidBinaryName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if !IsValidIdentifier(part) {
			return false
		}
	}
	return true
}
