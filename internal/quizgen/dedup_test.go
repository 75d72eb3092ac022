package quizgen

import "testing"

func TestNormalizeTopic(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What is the capital of France?", "what is the capital of france"},
		{"  Multiple   spaces\tand\ntabs ", "multiple spaces and tabs"},
		{"Punctuation, everywhere; really!?", "punctuation everywhere really"},
		{"", ""},
		{"?!.,;", ""},
		{"Numbers 42 survive", "numbers 42 survive"},
	}

	for _, tt := range tests {
		if got := NormalizeTopic(tt.in); got != tt.want {
			t.Errorf("NormalizeTopic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "what is the capital", "what is the capital", 1},
		{"disjoint", "alpha beta", "gamma delta", 0},
		{"half overlap", "a b c d", "a b e f", 1.0 / 3.0},
		{"both empty", "", "", 1},
		{"one empty", "a b", "", 0},
	}

	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Similarity = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestIsNearDuplicate(t *testing.T) {
	prior := []string{
		NormalizeTopic("What organelle is the powerhouse of the cell?"),
		NormalizeTopic("What is the capital of France?"),
	}

	// A trivial rewording of a prior question is caught.
	if !IsNearDuplicate("What organelle is the powerhouse of the cell", prior) {
		t.Error("expected rewording to be detected as duplicate")
	}

	// A different question on the same document is not.
	if IsNearDuplicate("During which process is ATP produced?", prior) {
		t.Error("expected distinct question to pass")
	}

	if IsNearDuplicate("anything", nil) {
		t.Error("no priors means no duplicates")
	}
}
