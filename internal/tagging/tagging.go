package tagging

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKind maps a free-form structure type ("Pozo", "SUMIDERO",
// "pozo de inspección", "drain") to a Kind. Unknown or empty input is KindOther.
func NormalizeKind(raw string) Kind {
	key := Fold(raw)
	if key == "" {
		return KindOther
	}
	if k, ok := aliases[key]; ok {
		return k
	}
	return KindOther
}

// Fold lowercases, strips diacritics, and collapses inner whitespace.
func Fold(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, raw)
	if err != nil {
		stripped = raw
	}
	lowered := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(lowered), " ")
}
