// Package pairkey derives a stable content identity for a pair, so
// imports can tell an edited pair from a brand-new one.
package pairkey

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/Tangorin-AP/genius-next-sub000/internal/domain"
)

// Normalize concatenates the pair's content after cleaning each part.
// It trims whitespace, lowercases, and normalizes line endings for each field
// before joining them.
func Normalize(p domain.Pair) string {
	normalizePart := func(part string) string {
		s := strings.ToLower(part)
		s = strings.TrimSpace(s)
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return s
	}

	q := normalizePart(p.Question)
	a := normalizePart(p.Answer)

	// Joined with a newline so the fields stay separated; "question"
	// and "answer" must not collapse into "questionanswer".
	return q + "\n" + a
}

// Hash takes a pair, normalizes it, and returns its SHA-256 hash as a hex string.
func Hash(p domain.Pair) string {
	normalized := Normalize(p)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
