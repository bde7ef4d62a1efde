package similarity

import "strings"

// TokenOverlap scores by the fraction of shared whitespace-delimited words:
// 2 * |common| / (|words a| + |words b|). Identical strings score 1.
type TokenOverlap struct {
	threshold float64
}

// NewTokenOverlap returns a TokenOverlap scorer with the standard threshold.
func NewTokenOverlap() *TokenOverlap {
	return &TokenOverlap{threshold: TokenOverlapThreshold}
}

// NewTokenOverlapWithThreshold returns a TokenOverlap scorer with a custom
// threshold on the [0,1] scale.
func NewTokenOverlapWithThreshold(threshold float64) *TokenOverlap {
	return &TokenOverlap{threshold: threshold}
}

func (t *TokenOverlap) Threshold() float64 { return t.threshold }

func (t *TokenOverlap) Max() float64 { return 1 }

// Score returns the shared-word fraction of a and b. A word counts as
// common when it appears anywhere in the other string; duplicates are not
// deduplicated beyond that membership test. Identical inputs short-circuit
// to 1 so that an exact restatement always scores the maximum.
func (t *TokenOverlap) Score(a, b string) float64 {
	if a == b {
		return 1
	}

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA)+len(wordsB) == 0 {
		return 1
	}

	inB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		inB[w] = struct{}{}
	}

	common := 0
	for _, w := range wordsA {
		if _, ok := inB[w]; ok {
			common++
		}
	}
	return float64(2*common) / float64(len(wordsA)+len(wordsB))
}
