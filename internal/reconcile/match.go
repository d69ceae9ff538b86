package reconcile

import (
	"context"
	"regexp"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ponyclubs/clubsync/internal/model"
)

// Thresholds maps a best-match score onto a confidence tier. Each bound is
// inclusive at the bottom of its tier.
type Thresholds struct {
	Exact  float64
	High   float64
	Medium float64
	Low    float64
}

// DefaultThresholds are the tier bounds used across the federation tooling.
var DefaultThresholds = Thresholds{Exact: 0.90, High: 0.80, Medium: 0.60, Low: 0.40}

// Classify derives the tier and recommended action for a score. The two are
// always derived together so they can never disagree.
func (t Thresholds) Classify(score float64) (model.MatchTier, model.MatchAction) {
	switch {
	case score >= t.Exact:
		return model.TierExact, model.ActionUpdate
	case score >= t.High:
		return model.TierHigh, model.ActionUpdate
	case score >= t.Medium:
		return model.TierMedium, model.ActionReview
	case score >= t.Low:
		return model.TierLow, model.ActionReview
	default:
		return model.TierNone, model.ActionSkip
	}
}

// Matcher scores extracted records against the club registry and selects
// the best candidate per record.
type Matcher struct {
	thresholds  Thresholds
	noiseRe     *regexp.Regexp
	parallelism int
}

// MatcherOptions tunes a Matcher. Zero values fall back to defaults.
type MatcherOptions struct {
	Thresholds  *Thresholds
	NoisePhrase string // stripped case-insensitively from both sides before scoring
	Parallelism int
}

// NewMatcher builds a Matcher. The default noise phrase is "pony club":
// nearly every name on both sides carries it, so it contributes no signal
// and would inflate scores between unrelated clubs.
func NewMatcher(opts MatcherOptions) *Matcher {
	th := DefaultThresholds
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}
	phrase := opts.NoisePhrase
	if phrase == "" {
		phrase = "pony club"
	}
	par := opts.Parallelism
	if par <= 0 {
		par = runtime.NumCPU()
	}
	return &Matcher{
		thresholds:  th,
		noiseRe:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase)),
		parallelism: par,
	}
}

func (m *Matcher) stripNoise(name string) string {
	return m.noiseRe.ReplaceAllString(name, "")
}

// Match finds the best-scoring club for every extracted record. Ties go to
// the first-encountered club, so output is stable for a stable club order
// (stores list clubs ordered by name). Multiple extracted records may
// independently claim the same club; no one-to-one assignment is enforced.
//
// The outer loop is independent per record and runs across a bounded
// errgroup; results keep input order. An empty club registry yields an
// empty match list.
func (m *Matcher) Match(ctx context.Context, extracted []model.ExtractedRecord, existing []model.Club) ([]model.MatchCandidate, error) {
	if len(extracted) == 0 || len(existing) == 0 {
		return nil, nil
	}

	cleaned := make([]string, len(existing))
	for i, club := range existing {
		cleaned[i] = m.stripNoise(club.Name)
	}

	out := make([]model.MatchCandidate, len(extracted))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.parallelism)

	for i := range extracted {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec := extracted[i]
			target := m.stripNoise(rec.Name)

			best := 0
			bestScore := -1.0
			for j := range existing {
				if s := Similarity(target, cleaned[j]); s > bestScore {
					best, bestScore = j, s
				}
			}

			tier, action := m.thresholds.Classify(bestScore)
			out[i] = model.MatchCandidate{
				ExistingID:        existing[best].ID,
				ExistingName:      existing[best].Name,
				Extracted:         rec,
				ConfidenceScore:   bestScore,
				MatchTier:         tier,
				RecommendedAction: action,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
