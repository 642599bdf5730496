// Package match grades a typed answer against the expected answer.
package match

import (
	"strings"

	"golang.org/x/text/cases"
)

// Mode selects how the expected and received answers are compared.
type Mode string

const (
	// ModeExact requires byte-for-byte equality.
	ModeExact Mode = "exact"
	// ModeCase requires equality under locale-aware case folding.
	ModeCase Mode = "case"
	// ModeFuzzy scores by character-trigram cosine similarity.
	ModeFuzzy Mode = "fuzzy"
)

// ParseMode maps a mode string to a Mode. Unknown or empty input
// falls back to ModeFuzzy rather than failing the grading call.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeExact:
		return ModeExact
	case ModeCase:
		return ModeCase
	case ModeFuzzy:
		return ModeFuzzy
	}
	return ModeFuzzy
}

var foldCaser = cases.Fold()

// Correctness computes a correctness score in [0,1] for a received
// answer against the expected one under the given mode.
//
// When both inputs are empty or whitespace-only the answer is
// trivially correct regardless of mode.
func Correctness(expected, received string, mode Mode) float64 {
	if strings.TrimSpace(expected) == "" && strings.TrimSpace(received) == "" {
		return 1
	}
	switch mode {
	case ModeExact:
		if expected == received {
			return 1
		}
		return 0
	case ModeCase:
		if foldCaser.String(expected) == foldCaser.String(received) {
			return 1
		}
		return 0
	default:
		return trigramCosine(expected, received)
	}
}
