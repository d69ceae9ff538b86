package reconcile

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]`)

// foldKey lowercases a string and strips everything outside [a-z0-9] so
// punctuation and spacing differences never affect similarity.
func foldKey(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(s), "")
}

// Similarity returns a normalized edit-distance score in [0,1] between two
// names. Identical folded strings (including two empty ones) score exactly
// 1.0; otherwise the score is (maxLen - levenshtein) / maxLen over the
// folded forms. Symmetric and deterministic.
func Similarity(a, b string) float64 {
	fa, fb := foldKey(a), foldKey(b)
	if fa == fb {
		return 1.0
	}

	maxLen := len(fa)
	if len(fb) > maxLen {
		maxLen = len(fb)
	}

	d := levenshtein.ComputeDistance(fa, fb)
	return float64(maxLen-d) / float64(maxLen)
}
