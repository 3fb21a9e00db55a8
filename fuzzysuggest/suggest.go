// Package fuzzysuggest ranks candidate strings against a query by normalised
// edit-distance similarity, for "did you mean" style diagnostics (missing
// module names, unknown location kinds, and similar developer-facing hints).
package fuzzysuggest

import (
	"sort"

	"github.com/agext/levenshtein"
)

// DefaultThreshold is the minimum similarity ratio (0..1) a candidate must
// reach to be suggested.
const DefaultThreshold = 0.6

// DefaultLimit bounds how many suggestions Suggest returns.
const DefaultLimit = 3

type scored struct {
	value      string
	similarity float64
}

// Suggest returns up to limit candidates ordered by descending similarity to
// query, keeping only those at or above threshold. A non-positive limit or
// threshold falls back to the package defaults.
func Suggest(query string, candidates []string, limit int, threshold float64) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	matches := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		sim := levenshtein.Match(query, c, nil)
		if sim >= threshold {
			matches = append(matches, scored{value: c, similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.value
	}
	return out
}
