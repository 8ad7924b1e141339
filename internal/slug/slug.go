// Package slug derives deterministic document IDs from descriptive fields.
package slug

import (
	"strings"
	"unicode"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// Generate returns the course ID for (name, city, state).
//
// Non-empty parts are joined with hyphens and lowercased. Characters outside
// [a-z0-9-] and whitespace are deleted, each whitespace run becomes one
// hyphen, leading and trailing hyphens are trimmed and the result is cut to
// domain.MaxIDLength bytes. Distinct courses sharing the triple collide on
// purpose, and existing IDs depend on these exact rules.
func Generate(name, city, state string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{name, city, state} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return Slugify(strings.Join(parts, "-"))
}

// Slugify applies the ID character rules to a single string.
// Literal hyphens are kept as they are, so "a - b" becomes "a---b".
func Slugify(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			if inSpace {
				b.WriteByte('-')
				inSpace = false
			}
			b.WriteRune(r)
		case isSpace(r):
			inSpace = true
		}
		// Anything else is deleted without breaking a whitespace run.
	}

	out := strings.Trim(b.String(), "-")
	if len(out) > domain.MaxIDLength {
		out = out[:domain.MaxIDLength]
	}
	return out
}

// isSpace matches the Unicode whitespace set, including the ASCII
// information separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
