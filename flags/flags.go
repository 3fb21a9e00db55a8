// Package flags implements the FlagBuilder: a fluent, declarative
// translation from user-facing compiler options to the CLI token vector the
// external compiler actually receives. Two dialects are provided, matching
// the two families of compiler options this harness targets.
package flags

import (
	"fmt"

	"github.com/hashicorp/go-version"

	"github.com/jcth-project/jcth/harnesserr"
)

// Dialect selects which concrete compiler's flag spelling a FlagBuilder
// emits.
type Dialect int

const (
	// Mainline spells warnings-as-errors as -Werror.
	Mainline Dialect = iota
	// Alternate spells warnings-as-errors as --failOnWarning.
	Alternate
)

// Builder accumulates options and renders them to a deterministic token
// vector: crafted flags, then annotation-processor options, then runtime
// options, then verbatim extras.
type Builder struct {
	dialect Dialect

	verbose             bool
	previewFeatures     bool
	warningsDisabled    bool
	warningsAsErrors    bool
	deprecationWarnings bool

	releaseVersion string
	sourceVersion  string
	targetVersion  string

	annotationProcessorOptions []string
	runtimeOptions             []string
	extraOptions               []string
}

// New builds an empty Builder for the given dialect.
func New(dialect Dialect) *Builder {
	return &Builder{dialect: dialect}
}

// Verbose toggles -verbose.
func (b *Builder) Verbose(v bool) *Builder { b.verbose = v; return b }

// PreviewFeatures toggles --enable-preview.
func (b *Builder) PreviewFeatures(v bool) *Builder { b.previewFeatures = v; return b }

// Warnings toggles -nowarn when false.
func (b *Builder) Warnings(enabled bool) *Builder { b.warningsDisabled = !enabled; return b }

// WarningsAsErrors toggles -Werror / --failOnWarning depending on dialect.
func (b *Builder) WarningsAsErrors(v bool) *Builder { b.warningsAsErrors = v; return b }

// DeprecationWarnings toggles -deprecation.
func (b *Builder) DeprecationWarnings(v bool) *Builder { b.deprecationWarnings = v; return b }

// ReleaseVersion sets --release V, clearing source/target version. Returns
// a ConfigurationError if v does not parse as a version.
func (b *Builder) ReleaseVersion(v string) (*Builder, error) {
	if _, err := version.NewVersion(normalizeVersion(v)); err != nil {
		return b, harnesserr.NewConfigurationError("invalid release_version %q: %v", v, err)
	}
	b.releaseVersion = v
	b.sourceVersion = ""
	b.targetVersion = ""
	return b, nil
}

// SourceVersion sets -source V, clearing release_version.
func (b *Builder) SourceVersion(v string) (*Builder, error) {
	if _, err := version.NewVersion(normalizeVersion(v)); err != nil {
		return b, harnesserr.NewConfigurationError("invalid source_version %q: %v", v, err)
	}
	b.sourceVersion = v
	b.releaseVersion = ""
	return b, nil
}

// TargetVersion sets -target V, clearing release_version.
func (b *Builder) TargetVersion(v string) (*Builder, error) {
	if _, err := version.NewVersion(normalizeVersion(v)); err != nil {
		return b, harnesserr.NewConfigurationError("invalid target_version %q: %v", v, err)
	}
	b.targetVersion = v
	b.releaseVersion = ""
	return b, nil
}

// AnnotationProcessorOptions sets the -A<opt> list, replacing any previous
// value.
func (b *Builder) AnnotationProcessorOptions(opts []string) *Builder {
	b.annotationProcessorOptions = append([]string(nil), opts...)
	return b
}

// RuntimeOptions sets the -J<opt> list, replacing any previous value.
func (b *Builder) RuntimeOptions(opts []string) *Builder {
	b.runtimeOptions = append([]string(nil), opts...)
	return b
}

// ExtraOptions sets the verbatim trailing option list, replacing any
// previous value.
func (b *Builder) ExtraOptions(opts []string) *Builder {
	b.extraOptions = append([]string(nil), opts...)
	return b
}

// normalizeVersion returns v unchanged: go-version already accepts bare
// feature-release numbers like "17" and rejects negative or non-numeric
// input such as "-1" or "not-a-version" on its own.
func normalizeVersion(v string) string {
	return v
}

// Build renders the accumulated options to their CLI token vector, in
// deterministic order: crafted flags, then annotation-processor options,
// then runtime options, then verbatim extras.
func (b *Builder) Build() []string {
	var tokens []string

	if b.verbose {
		tokens = append(tokens, "-verbose")
	}
	if b.previewFeatures {
		tokens = append(tokens, "--enable-preview")
	}
	if b.warningsDisabled {
		tokens = append(tokens, "-nowarn")
	}
	if b.warningsAsErrors {
		if b.dialect == Alternate {
			tokens = append(tokens, "--failOnWarning")
		} else {
			tokens = append(tokens, "-Werror")
		}
	}
	if b.deprecationWarnings {
		tokens = append(tokens, "-deprecation")
	}
	if b.releaseVersion != "" {
		tokens = append(tokens, "--release", b.releaseVersion)
	}
	if b.sourceVersion != "" {
		tokens = append(tokens, "-source", b.sourceVersion)
	}
	if b.targetVersion != "" {
		tokens = append(tokens, "-target", b.targetVersion)
	}

	for _, o := range b.annotationProcessorOptions {
		tokens = append(tokens, fmt.Sprintf("-A%s", o))
	}
	for _, o := range b.runtimeOptions {
		tokens = append(tokens, fmt.Sprintf("-J%s", o))
	}
	tokens = append(tokens, b.extraOptions...)

	return tokens
}

// EffectiveRelease returns the release version as an integer feature
// number, for selecting a multi-release archive overlay. It falls back to
// target_version, then 0 if neither is set or parses.
func (b *Builder) EffectiveRelease() int {
	for _, v := range []string{b.releaseVersion, b.targetVersion} {
		if v == "" {
			continue
		}
		if n, ok := featureVersion(v); ok {
			return n
		}
	}
	return 0
}

func featureVersion(v string) (int, bool) {
	parsed, err := version.NewVersion(normalizeVersion(v))
	if err != nil {
		return 0, false
	}
	segs := parsed.Segments()
	if len(segs) == 0 {
		return 0, false
	}
	return segs[0], true
}
