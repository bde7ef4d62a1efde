// Package similarity scores how close two normalized questions are.
//
// Two strategies are provided. Levenshtein converts edit distance into a
// percentage in [0,100] and is the stricter default for client-side
// matching (threshold 85). TokenOverlap measures shared whitespace-delimited
// words in [0,1] and is used by the HTTP API (threshold 0.7). Thresholds
// belong to their own scale and must not be mixed.
package similarity

// Scorer computes a similarity score between two normalized strings.
// Score is on the scorer's own scale; Threshold and Max share that scale.
type Scorer interface {
	// Score returns the similarity of a and b.
	Score(a, b string) float64
	// Threshold is the minimum score that counts as a match.
	Threshold() float64
	// Max is the score of a string against itself.
	Max() float64
}

const (
	// LevenshteinThreshold is the percentage above which two questions are
	// considered the same.
	LevenshteinThreshold = 85.0
	// TokenOverlapThreshold is the shared-word fraction above which two
	// questions are considered the same.
	TokenOverlapThreshold = 0.7
)

// Levenshtein scores by standard dynamic-programming edit distance
// (insert, delete, substitute each cost 1) converted to a percentage:
// (maxLen - distance) / maxLen * 100.
type Levenshtein struct {
	threshold float64
}

// NewLevenshtein returns a Levenshtein scorer with the standard threshold.
func NewLevenshtein() *Levenshtein {
	return &Levenshtein{threshold: LevenshteinThreshold}
}

// NewLevenshteinWithThreshold returns a Levenshtein scorer with a custom
// threshold on the [0,100] scale.
func NewLevenshteinWithThreshold(threshold float64) *Levenshtein {
	return &Levenshtein{threshold: threshold}
}

func (l *Levenshtein) Threshold() float64 { return l.threshold }

func (l *Levenshtein) Max() float64 { return 100 }

// Score returns the percentage similarity of a and b. Two empty strings
// score 100; distance over a zero max length never divides by zero.
func (l *Levenshtein) Score(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 100
	}
	d := distance(ra, rb)
	return float64(maxLen-d) / float64(maxLen) * 100
}

// distance computes edit distance with a two-row DP table.
func distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min3(prev[j-1], curr[j-1], prev[j]) + 1
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
