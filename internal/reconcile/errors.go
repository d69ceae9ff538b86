package reconcile

import "github.com/rotisserie/eris"

// Sentinel errors for the pipeline's fatal failure classes. Callers can
// distinguish them with errors.Is; wrapped messages carry the diagnostic.
var (
	// ErrExtraction marks a malformed payload: missing or unclosed array,
	// JSON parse failure, or a non-array top-level value.
	ErrExtraction = eris.New("reconcile: extraction failed")

	// ErrMatching marks an unexpected failure while matching, e.g. the
	// club registry being unreachable. No partial results are returned.
	ErrMatching = eris.New("reconcile: matching failed")
)
