package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases text, strips combining diacritical marks and
// collapses whitespace, so "Đồng ý!" and "dong y" compare equal.  The
// Vietnamese đ has no decomposition and is mapped to d explicitly.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	// transformers carry state; build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lower)
	if err != nil {
		folded = lower
	}
	folded = strings.ReplaceAll(folded, "đ", "d")
	folded = strings.Join(strings.Fields(folded), " ")
	return strings.TrimFunc(folded, unicode.IsPunct)
}
