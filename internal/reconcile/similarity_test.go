package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Identity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Riverside", "Riverside"))
	assert.Equal(t, 1.0, Similarity("", ""))
}

func TestSimilarity_IgnoresCaseAndPunctuation(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Riverside Pony Club", "riverside pony-club"))
	assert.Equal(t, 1.0, Similarity("St. Mary's", "st marys"))
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Riverside", "Riverton"},
		{"Zeta Club", "Completely Different Org"},
		{"", "abc"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "pair %v", p)
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"},
		{"abc", ""},
		{"Riverside Pony Club", "Lakeside Pony Club"},
		{"xyz", "xyz"},
		{"short", "a much much longer string entirely"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0, "pair %v", p)
		assert.LessOrEqual(t, s, 1.0, "pair %v", p)
	}
}

func TestSimilarity_EditDistanceRatio(t *testing.T) {
	// "riverside" vs "riverton": distance 4 over max length 9.
	assert.InDelta(t, float64(9-4)/9, Similarity("riverside", "riverton"), 1e-9)
}

func TestSimilarity_CompletelyDisjoint(t *testing.T) {
	assert.Less(t, Similarity("Zeta Club", "Completely Different Org"), 0.40)
}

func TestSimilarity_OneEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "abc"))
}
