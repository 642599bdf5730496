package match

import (
	"math"
	"strings"
)

// trigrams extracts overlapping 3-rune windows, with multiplicity,
// from the string padded with two leading spaces and one trailing
// space and lower-cased. The padding gives word-start trigrams extra
// weight, which keeps short answers from matching on suffixes alone.
func trigrams(s string) map[string]int {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	padded := []rune("  " + strings.ToLower(s) + " ")
	if len(padded) < 3 {
		return nil
	}
	grams := make(map[string]int, len(padded))
	for i := 0; i+3 <= len(padded); i++ {
		grams[string(padded[i:i+3])]++
	}
	return grams
}

// trigramCosine is the cosine similarity of the two strings viewed
// as sparse trigram-count vectors. Strings too short to produce a
// trigram degrade to trimmed equality.
func trigramCosine(a, b string) float64 {
	va := trigrams(a)
	vb := trigrams(b)
	if len(va) == 0 || len(vb) == 0 {
		if strings.TrimSpace(a) == strings.TrimSpace(b) {
			return 1
		}
		return 0
	}

	var dot, na, nb float64
	for g, ca := range va {
		na += float64(ca * ca)
		if cb, ok := vb[g]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range vb {
		nb += float64(cb * cb)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Guard against float drift pushing the result out of [0,1].
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
