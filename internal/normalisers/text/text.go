// Package text provides the search-text helpers used by the course
// normaliser: diacritic folding, whitespace tokenisation and n-grams.
// All functions are pure and safe for concurrent use.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultNGramSize is the gram length used for name search fields.
const DefaultNGramSize = 3

// quoteRunes are apostrophe and glottal-stop variants dropped by Normalize.
var quoteRunes = map[rune]bool{
	'\'':     true,
	'`':      true,
	'\u00B4': true, // acute accent
	'\u2018': true, // left single quotation mark
	'\u2019': true, // right single quotation mark
	'\u201B': true, // single high-reversed-9 quotation mark
	'\u2032': true, // prime
	'\u02B9': true, // modifier letter prime
	'\u02BB': true, // modifier letter turned comma (okina)
	'\u02BC': true, // modifier letter apostrophe
	'\u02BD': true, // modifier letter reversed comma
}

// Normalize folds s for accent- and punctuation-insensitive matching:
// lowercase, canonical decomposition, combining marks removed, quote
// characters removed, surrounding whitespace trimmed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// Lowercase first: some uppercase letters lowercase to a base letter plus
	// a combining mark, which must be stripped in the same pass.
	s = strings.ToLower(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.M)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	folded = strings.Map(func(r rune) rune {
		if quoteRunes[r] {
			return -1
		}
		return r
	}, folded)

	return strings.TrimSpace(folded)
}

// Tokenize lowercases s and splits it on whitespace.
// An empty or blank input yields an empty, non-nil slice.
func Tokenize(s string) []string {
	tokens := strings.Fields(strings.ToLower(s))
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// NGrams returns the distinct n-rune windows of the lowercased, trimmed
// input in first-occurrence order. Inputs shorter than n yield an empty slice.
func NGrams(s string, n int) []string {
	r := []rune(strings.TrimSpace(strings.ToLower(s)))
	if n <= 0 || len(r) < n {
		return []string{}
	}

	seen := make(map[string]bool, len(r)-n+1)
	grams := make([]string, 0, len(r)-n+1)
	for i := 0; i+n <= len(r); i++ {
		g := string(r[i : i+n])
		if seen[g] {
			continue
		}
		seen[g] = true
		grams = append(grams, g)
	}
	return grams
}

// Lower applies full Unicode lowercasing, including special casings such as
// final sigma and dotted capital I that strings.ToLower maps per rune.
func Lower(s string) string {
	// A Caser is stateful, so one is built per call.
	return cases.Lower(language.Und).String(s)
}
