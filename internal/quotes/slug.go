package quotes

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks decomposes to NFKD and strips combining marks, so "Amélie"
// folds to "Amelie" before slugging.
var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	nonWord = regexp.MustCompile(`[^\w\s-]`)
	hyphens = regexp.MustCompile(`[-\s]+`)
)

// Slugify normalizes a title or character name to a comparison- and
// filename-safe slug: diacritics folded, punctuation dropped, whitespace
// runs collapsed to single hyphens, lowercased.
func Slugify(s string) string {
	folded, _, err := transform.String(foldMarks, s)
	if err != nil {
		folded = s
	}

	folded = nonWord.ReplaceAllString(folded, "")
	folded = strings.ToLower(strings.TrimSpace(folded))
	return hyphens.ReplaceAllString(folded, "-")
}
