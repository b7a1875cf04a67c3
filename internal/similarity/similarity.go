// Package similarity flags near-duplicate quotes by lexical overlap.
//
// The thresholds here (0.3 overlap ratio, 3-character token cutoff,
// bigram phrase matching) were tuned together with the generation
// prompts; changing them shifts what the avoid-list feedback loop
// rejects, so they stay as-is.
package similarity

import (
	"strings"
	"unicode"
)

// overlapThreshold is the word-overlap ratio above which two quotes are
// considered similar.
const overlapThreshold = 0.3

// minTokenLength filters out stopword-like short tokens. Tokens of this
// length or shorter are ignored.
const minTokenLength = 3

// AreSimilar reports whether two quote texts are lexically similar.
// Two texts are similar when their significant-word overlap ratio
// exceeds 0.3, or when they share any two-word phrase. A single
// repeated phrase is a stronger repetition signal than aggregate
// overlap, so either condition suffices.
func AreSimilar(a, b string) bool {
	wordsA := normalize(a)
	wordsB := normalize(b)

	if overlapRatio(wordsA, wordsB) > overlapThreshold {
		return true
	}

	return sharesBigram(wordsA, wordsB)
}

// SimilarToAny reports whether text is similar to any entry in corpus.
func SimilarToAny(text string, corpus []string) bool {
	for _, other := range corpus {
		if AreSimilar(text, other) {
			return true
		}
	}
	return false
}

// normalize lowercases the text, strips punctuation, and returns the
// tokens longer than minTokenLength.
func normalize(text string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	var words []string
	for _, word := range strings.Fields(b.String()) {
		if len(word) > minTokenLength {
			words = append(words, word)
		}
	}
	return words
}

func overlapRatio(wordsA, wordsB []string) float64 {
	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 0
	}

	setB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		setB[w] = true
	}

	common := 0
	for _, w := range wordsA {
		if setB[w] {
			common++
		}
	}

	max := len(wordsA)
	if len(wordsB) > max {
		max = len(wordsB)
	}
	return float64(common) / float64(max)
}

func sharesBigram(wordsA, wordsB []string) bool {
	if len(wordsA) < 2 || len(wordsB) < 2 {
		return false
	}

	bigramsA := make(map[string]bool, len(wordsA)-1)
	for i := 0; i < len(wordsA)-1; i++ {
		bigramsA[wordsA[i]+" "+wordsA[i+1]] = true
	}

	for i := 0; i < len(wordsB)-1; i++ {
		if bigramsA[wordsB[i]+" "+wordsB[i+1]] {
			return true
		}
	}
	return false
}
