package similarity

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLevenshteinScore(t *testing.T) {
	s := NewLevenshtein()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "what is go", "what is go", 100},
		{"both empty", "", "", 100},
		{"one empty", "abc", "", 0},
		{"single substitution", "kitten", "sitten", 100 * 5.0 / 6.0},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLevenshteinSymmetric(t *testing.T) {
	s := NewLevenshtein()
	if s.Score("what is 22", "what is 2 2") != s.Score("what is 2 2", "what is 22") {
		t.Error("score should be symmetric")
	}
}

func TestLevenshteinSelfIsMax(t *testing.T) {
	s := NewLevenshtein()
	for _, in := range []string{"", "a", "what is the capital of france", "ğüşıöç"} {
		if got := s.Score(in, in); got != s.Max() {
			t.Errorf("Score(%q, %q) = %v, want %v", in, in, got, s.Max())
		}
	}
}

func TestLevenshteinNearDuplicateAboveThreshold(t *testing.T) {
	s := NewLevenshtein()
	// Normalized forms of "What is 2+2?" and "what is 2+2" differ by nothing;
	// a one-rune difference over a long question stays above 85.
	got := s.Score("what is the capital city of france", "what is the capital city of francee")
	if got < s.Threshold() {
		t.Errorf("expected near-duplicate above threshold, got %v", got)
	}
}

func TestTokenOverlapScore(t *testing.T) {
	s := NewTokenOverlap()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "what is go", "what is go", 1},
		{"both empty", "", "", 1},
		{"no overlap", "alpha beta", "gamma delta", 0},
		{"half overlap", "a b", "a c", 0.5},
		{"subset", "what is go", "what is go exactly", 6.0 / 7.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenOverlapSelfIsMax(t *testing.T) {
	s := NewTokenOverlap()
	for _, in := range []string{"", "one", "how do i reset my password"} {
		if got := s.Score(in, in); got != s.Max() {
			t.Errorf("Score(%q, %q) = %v, want %v", in, in, got, s.Max())
		}
	}
}

func TestThresholds(t *testing.T) {
	if NewLevenshtein().Threshold() != 85 {
		t.Error("levenshtein threshold should be 85")
	}
	if NewTokenOverlap().Threshold() != 0.7 {
		t.Error("token overlap threshold should be 0.7")
	}
	if NewLevenshteinWithThreshold(90).Threshold() != 90 {
		t.Error("custom levenshtein threshold not applied")
	}
	if NewTokenOverlapWithThreshold(0.5).Threshold() != 0.5 {
		t.Error("custom token overlap threshold not applied")
	}
}
