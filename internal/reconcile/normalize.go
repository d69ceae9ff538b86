// Package reconcile implements the club-data reconciliation pipeline:
// payload extraction, fuzzy name matching against the club registry, and
// preview/apply session orchestration.
package reconcile

import (
	"regexp"
	"strings"
)

var (
	strippedCharsRe = regexp.MustCompile(`[^A-Za-z0-9@._\s-]`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
)

// Normalize cleans a free-text contact field:
//  1. Strips characters outside [A-Za-z0-9@._-] and whitespace
//  2. Collapses whitespace runs into single spaces
//  3. Trims leading/trailing whitespace
//
// Pure and idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := strippedCharsRe.ReplaceAllString(raw, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
