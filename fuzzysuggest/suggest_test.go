package fuzzysuggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestOrdersBySimilarity(t *testing.T) {
	got := Suggest("com.example.Foo", []string{"com.example.Foo2", "completely.unrelated", "com.example.Fop"}, 0, 0)
	assert.NotEmpty(t, got)
	assert.Equal(t, "com.example.Foo2", got[0])
}

func TestSuggestFiltersBelowThreshold(t *testing.T) {
	got := Suggest("abc", []string{"xyz"}, 0, 0)
	assert.Empty(t, got)
}

func TestSuggestRespectsLimit(t *testing.T) {
	candidates := []string{"aaaa", "aaab", "aaac", "aaad"}
	got := Suggest("aaaa", candidates, 2, 0.1)
	assert.Len(t, got, 2)
}

func TestSuggestDefaultsOnNonPositiveArgs(t *testing.T) {
	got := Suggest("aaaa", []string{"aaaa", "aaab", "aaac", "aaad", "zzzz"}, -1, -1)
	assert.LessOrEqual(t, len(got), DefaultLimit)
}

func TestSuggestNoCandidates(t *testing.T) {
	assert.Empty(t, Suggest("query", nil, 0, 0))
}
