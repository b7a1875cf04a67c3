package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAreSimilar(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected bool
	}{
		{
			name:     "identical texts",
			a:        "Every moment is a fresh beginning.",
			b:        "Every moment is a fresh beginning.",
			expected: true,
		},
		{
			name:     "no shared significant words",
			a:        "Discipline shapes champions through relentless training.",
			b:        "Kindness opens doors wherever gratitude lives.",
			expected: false,
		},
		{
			name:     "reordered words share bigrams and overlap",
			a:        "Success is not final, failure is not fatal",
			b:        "Failure is not final, success is not fatal",
			expected: true,
		},
		{
			name:     "shared bigram alone is enough",
			a:        "Work hard then chase your goals across every bright sunrise",
			b:        "Quiet minds chase your peace while winter slowly teaches patience",
			expected: true,
		},
		{
			name:     "high word overlap without shared bigrams",
			a:        "Courage builds character through struggle",
			b:        "Character requires courage during struggle",
			expected: true,
		},
		{
			name:     "punctuation and case are ignored",
			a:        "EVERY moment... is a FRESH beginning!!!",
			b:        "every moment is a fresh beginning",
			expected: true,
		},
		{
			name:     "short stopword-like tokens are discarded",
			a:        "You are the one who can",
			b:        "He is not the guy we saw",
			expected: false,
		},
		{
			name:     "low overlap distinct quotes",
			a:        "Innovation distinguishes between leaders and followers.",
			b:        "Patience plants seeds that bloom across decades.",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AreSimilar(tt.a, tt.b))
			// Symmetric
			assert.Equal(t, tt.expected, AreSimilar(tt.b, tt.a))
		})
	}
}

func TestSimilarToAny(t *testing.T) {
	corpus := []string{
		"Discipline shapes champions through relentless training.",
		"Every moment is a fresh beginning.",
	}

	t.Run("matches one entry", func(t *testing.T) {
		assert.True(t, SimilarToAny("Every moment is a fresh beginning.", corpus))
	})

	t.Run("matches nothing", func(t *testing.T) {
		assert.False(t, SimilarToAny("Kindness opens doors wherever gratitude lives.", corpus))
	})

	t.Run("empty corpus", func(t *testing.T) {
		assert.False(t, SimilarToAny("Anything at all.", nil))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("lowercases strips punctuation and drops short tokens", func(t *testing.T) {
		words := normalize("The Journey, of a THOUSAND miles!")
		assert.Equal(t, []string{"journey", "thousand", "miles"}, words)
	})

	t.Run("all short tokens", func(t *testing.T) {
		assert.Empty(t, normalize("it is as it was"))
	})
}

func TestOverlapRatio(t *testing.T) {
	t.Run("full overlap", func(t *testing.T) {
		words := []string{"success", "final", "failure", "fatal"}
		assert.Equal(t, 1.0, overlapRatio(words, words))
	})

	t.Run("no overlap", func(t *testing.T) {
		assert.Equal(t, 0.0, overlapRatio([]string{"alpha"}, []string{"omega"}))
	})

	t.Run("both empty", func(t *testing.T) {
		assert.Equal(t, 0.0, overlapRatio(nil, nil))
	})
}
