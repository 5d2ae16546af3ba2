package store

import (
	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityRatio returns the matching-blocks ratio 2*M/T of two strings,
// compared character by character. Range [0,1]; identical strings give 1.
func SimilarityRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
