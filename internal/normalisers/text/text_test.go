package text

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// TestNormalize tests diacritic and quote folding
func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"lowercases and trims", "  Pebble Beach  ", "pebble beach"},
		{"strips acute", "Café Golf", "cafe golf"},
		{"strips tilde", "Cañon City", "canon city"},
		{"strips umlaut", "Über Links", "uber links"},
		{"removes ascii apostrophe", "St. Andrew's", "st. andrews"},
		{"removes curly apostrophe", "Hawai’i Kai", "hawaii kai"},
		{"removes okina", "Hawaiʻi Kai", "hawaii kai"},
		{"removes backtick", "O`ahu", "oahu"},
		{"keeps other punctuation", "Links - North/South", "links - north/south"},
		{"dotted capital i", "İstanbul", "istanbul"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

// TestNormalize_Idempotent tests Normalize(Normalize(x)) == Normalize(x)
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Pebble Beach Golf Links",
		"Kaʻanapali Golf Courses",
		"Crève Cœur",
		"ÅSGÅRD",
		"İİ",
		"é́",
		" ' ` ",
		"ǅemal",
		"Straße",
		"日本ゴルフ",
		"a​b",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		assert.True(t, utf8.ValidString(once))
	}
}

// TestTokenize tests whitespace tokenisation
func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"pebble", "beach", "golf", "links"}, Tokenize("Pebble Beach Golf Links"))
	assert.Equal(t, []string{"a", "b"}, Tokenize("  A\t\nb  "))
	assert.Equal(t, []string{}, Tokenize(""))
	assert.Equal(t, []string{}, Tokenize("   "))
	assert.NotNil(t, Tokenize(""))
}

// TestNGrams tests distinct sliding windows
func TestNGrams(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  []string
	}{
		{"shorter than n", "ab", 3, []string{}},
		{"empty", "", 3, []string{}},
		{"exactly n", "Abc", 3, []string{"abc"}},
		{"sliding", "golf", 3, []string{"gol", "olf"}},
		{"duplicates dropped", "aaaa", 3, []string{"aaa"}},
		{"first occurrence order", "abcabc", 3, []string{"abc", "bca", "cab"}},
		{"trims before length check", "  ab  ", 3, []string{}},
		{"runes not bytes", "Café", 3, []string{"caf", "afé"}},
		{"zero n", "golf", 0, []string{}},
		{"bigrams", "golf", 2, []string{"go", "ol", "lf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NGrams(tt.input, tt.n))
		})
	}
}

// TestNGrams_Distinct tests that no gram is repeated and all have length n
func TestNGrams_Distinct(t *testing.T) {
	grams := NGrams("Pebble Beach Golf Links Pebble Beach", DefaultNGramSize)
	seen := map[string]bool{}
	for _, g := range grams {
		assert.False(t, seen[g], "duplicate gram %q", g)
		seen[g] = true
		assert.Equal(t, DefaultNGramSize, utf8.RuneCountInString(g))
	}
}

// TestLower tests full Unicode lowercasing
func TestLower(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ascii", "Pebble Beach", "pebble beach"},
		{"accents kept", "ÉLAN", "élan"},
		{"final sigma", "ΣΑΣ", "σας"},
		{"dotted capital i", "İstanbul", "i̇stanbul"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lower(tt.input))
		})
	}
}
