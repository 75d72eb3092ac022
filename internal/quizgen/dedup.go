package quizgen

import "strings"

// duplicateThreshold is the token-set similarity above which two
// questions are treated as the same question.
const duplicateThreshold = 0.8

// NormalizeTopic reduces question text to a comparable form: lowercase,
// punctuation stripped, whitespace collapsed.
func NormalizeTopic(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity computes the Jaccard similarity of the word sets of two
// normalized question texts. Returns a value in [0, 1].
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// IsNearDuplicate reports whether question is too similar to any prior
// normalized question text.
func IsNearDuplicate(question string, priorTopics []string) bool {
	normalized := NormalizeTopic(question)
	for _, prior := range priorTopics {
		if Similarity(normalized, prior) >= duplicateThreshold {
			return true
		}
	}
	return false
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}
