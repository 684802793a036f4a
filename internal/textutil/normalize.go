package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison form of a name: case folded, compatibility
// decomposed with combining marks removed, and whitespace collapsed to single
// spaces.
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	// Casers and transform chains are stateful; build them per call.
	chain := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	folded, _, err := transform.String(chain, value)
	if err != nil {
		folded = strings.ToLower(value)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// FoldKey returns the case-insensitive identity form of a natural-key name.
// Unlike Normalize it keeps diacritics, so "Höfner" and "Hofner" remain
// distinct keys and are left to the fuzzy stage.
func FoldKey(value string) string {
	folded := cases.Fold().String(strings.TrimSpace(value))
	return strings.Join(strings.Fields(folded), " ")
}
