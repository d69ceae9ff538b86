package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ponyclubs/clubsync/internal/model"
)

func newTestMatcher() *Matcher {
	return NewMatcher(MatcherOptions{Parallelism: 1})
}

func TestClassify_Tiers(t *testing.T) {
	th := DefaultThresholds

	cases := []struct {
		score  float64
		tier   model.MatchTier
		action model.MatchAction
	}{
		{1.0, model.TierExact, model.ActionUpdate},
		{0.90, model.TierExact, model.ActionUpdate},
		{0.89, model.TierHigh, model.ActionUpdate},
		{0.80, model.TierHigh, model.ActionUpdate},
		{0.79, model.TierMedium, model.ActionReview},
		{0.60, model.TierMedium, model.ActionReview},
		{0.59, model.TierLow, model.ActionReview},
		{0.40, model.TierLow, model.ActionReview},
		{0.39, model.TierNone, model.ActionSkip},
		{0.0, model.TierNone, model.ActionSkip},
	}
	for _, c := range cases {
		tier, action := th.Classify(c.score)
		assert.Equal(t, c.tier, tier, "score %v", c.score)
		assert.Equal(t, c.action, action, "score %v", c.score)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	rank := map[model.MatchTier]int{
		model.TierNone:   0,
		model.TierLow:    1,
		model.TierMedium: 2,
		model.TierHigh:   3,
		model.TierExact:  4,
	}
	th := DefaultThresholds

	prev := -1
	for s := 0.0; s <= 1.0; s += 0.01 {
		tier, _ := th.Classify(s)
		require.GreaterOrEqual(t, rank[tier], prev, "score %v", s)
		prev = rank[tier]
	}
}

func TestMatch_ExactMatch(t *testing.T) {
	existing := []model.Club{{ID: "c1", Name: "Riverside Pony Club"}}
	extracted := []model.ExtractedRecord{{Name: "Riverside Pony Club"}}

	matches, err := newTestMatcher().Match(context.Background(), extracted, existing)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c1", matches[0].ExistingID)
	assert.Equal(t, 1.0, matches[0].ConfidenceScore)
	assert.Equal(t, model.TierExact, matches[0].MatchTier)
	assert.Equal(t, model.ActionUpdate, matches[0].RecommendedAction)
}

func TestMatch_NoMatch(t *testing.T) {
	existing := []model.Club{{ID: "c1", Name: "Zeta Club"}}
	extracted := []model.ExtractedRecord{{Name: "Completely Different Org"}}

	matches, err := newTestMatcher().Match(context.Background(), extracted, existing)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Less(t, matches[0].ConfidenceScore, 0.40)
	assert.Equal(t, model.TierNone, matches[0].MatchTier)
	assert.Equal(t, model.ActionSkip, matches[0].RecommendedAction)
}

func TestMatch_StripsNoisePhrase(t *testing.T) {
	// Both sides carry "pony club"; it must not inflate similarity between
	// otherwise unrelated names.
	existing := []model.Club{{ID: "c1", Name: "Riverside Pony Club"}}
	extracted := []model.ExtractedRecord{{Name: "Riverside"}}

	matches, err := newTestMatcher().Match(context.Background(), extracted, existing)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].ConfidenceScore)
}

func TestMatch_PicksBestScore(t *testing.T) {
	existing := []model.Club{
		{ID: "c1", Name: "Lakeside Pony Club"},
		{ID: "c2", Name: "Riverside Pony Club"},
		{ID: "c3", Name: "Hillside Pony Club"},
	}
	extracted := []model.ExtractedRecord{{Name: "Riverside Pony Club Inc"}}

	matches, err := newTestMatcher().Match(context.Background(), extracted, existing)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c2", matches[0].ExistingID)
}

func TestMatch_TieFirstEncounteredWins(t *testing.T) {
	existing := []model.Club{
		{ID: "c1", Name: "Riverside"},
		{ID: "c2", Name: "Riverside"},
	}
	extracted := []model.ExtractedRecord{{Name: "Riverside"}}

	matches, err := newTestMatcher().Match(context.Background(), extracted, existing)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c1", matches[0].ExistingID)
}

func TestMatch_EmptyExistingSet(t *testing.T) {
	matches, err := newTestMatcher().Match(context.Background(),
		[]model.ExtractedRecord{{Name: "Riverside"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatch_EmptyExtractedSet(t *testing.T) {
	matches, err := newTestMatcher().Match(context.Background(),
		nil, []model.Club{{ID: "c1", Name: "Riverside"}})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatch_SameClubClaimedTwice(t *testing.T) {
	existing := []model.Club{{ID: "c1", Name: "Riverside Pony Club"}}
	extracted := []model.ExtractedRecord{
		{Name: "Riverside Pony Club"},
		{Name: "Riverside P.C."},
	}

	matches, err := newTestMatcher().Match(context.Background(), extracted, existing)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "c1", matches[0].ExistingID)
	assert.Equal(t, "c1", matches[1].ExistingID)
}

func TestMatch_PreservesInputOrder(t *testing.T) {
	existing := []model.Club{
		{ID: "c1", Name: "Alpha Pony Club"},
		{ID: "c2", Name: "Bravo Pony Club"},
		{ID: "c3", Name: "Charlie Pony Club"},
	}
	extracted := []model.ExtractedRecord{
		{Name: "Charlie Pony Club"},
		{Name: "Alpha Pony Club"},
		{Name: "Bravo Pony Club"},
	}

	m := NewMatcher(MatcherOptions{Parallelism: 4})
	matches, err := m.Match(context.Background(), extracted, existing)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "c3", matches[0].ExistingID)
	assert.Equal(t, "c1", matches[1].ExistingID)
	assert.Equal(t, "c2", matches[2].ExistingID)
}
