package match

import (
	"strings"
	"unicode"
)

// answerPlaceholder is shown when a normalized answer has no
// comparable content left.
const answerPlaceholder = "…"

// normalize lowercases, replaces non-letter/non-digit runes with
// spaces, and collapses runs of whitespace. Diacritics are kept.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(unicode.ToLower(r))
		} else {
			space = true
		}
	}
	return b.String()
}

// IsExactLike reports whether two answers are equal once case,
// punctuation, and whitespace differences are removed. Used to
// auto-accept a typed answer without a confirmation step.
func IsExactLike(a, b string) bool {
	return normalize(a) == normalize(b)
}

// NormalizeAnswerDisplay returns the normalized form of an answer
// for display, substituting a placeholder when nothing remains.
func NormalizeAnswerDisplay(s string) string {
	n := normalize(s)
	if n == "" {
		return answerPlaceholder
	}
	return n
}
