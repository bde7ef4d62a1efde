// Package normalize canonicalizes question text for comparison.
package normalize

import (
	"strings"
	"unicode"
)

// DefaultExtraLetters is the set of extended Latin letters preserved by
// default, covering the Turkish alphabet. Deployments targeting another
// locale pass their own set to New.
const DefaultExtraLetters = "ğüşıöçĞÜŞİÖÇ"

// maxLength caps normalized output at 200 runes.
const maxLength = 200

// Normalizer lowercases, strips punctuation, collapses whitespace and
// truncates question text. It is pure: the same input always yields the
// same output, and Normalize(Normalize(x)) == Normalize(x).
type Normalizer struct {
	extra map[rune]struct{}
}

// New creates a Normalizer preserving the given extra letters in addition
// to ASCII word characters. An empty string means ASCII-only.
func New(extraLetters string) *Normalizer {
	extra := make(map[rune]struct{}, len(extraLetters))
	for _, r := range extraLetters {
		extra[r] = struct{}{}
	}
	return &Normalizer{extra: extra}
}

// Default returns a Normalizer with DefaultExtraLetters.
func Default() *Normalizer {
	return New(DefaultExtraLetters)
}

// Normalize canonicalizes raw question text: lowercase, keep only word
// characters, whitespace and the configured extra letters, collapse runs
// of whitespace to single spaces, trim, and truncate to 200 runes.
func (n *Normalizer) Normalize(raw string) string {
	lowered := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if n.keep(r) {
			b.WriteRune(r)
		}
	}

	// Fields both collapses interior runs and drops the leading/trailing
	// whitespace that stripping punctuation can expose.
	collapsed := strings.Join(strings.Fields(b.String()), " ")

	runes := []rune(collapsed)
	if len(runes) > maxLength {
		collapsed = strings.TrimSpace(string(runes[:maxLength]))
	}
	return collapsed
}

func (n *Normalizer) keep(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case unicode.IsSpace(r):
		return true
	}
	_, ok := n.extra[r]
	return ok
}
