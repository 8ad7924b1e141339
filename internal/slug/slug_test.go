package slug

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{0,200}$`)

// TestGenerate tests ID derivation
func TestGenerate(t *testing.T) {
	tests := []struct {
		name             string
		course, city, st string
		want             string
	}{
		{"pebble beach", "Pebble Beach Golf Links", "Pebble Beach", "CA", "pebble-beach-golf-links-pebble-beach-ca"},
		{"missing city", "Bandon Dunes", "", "OR", "bandon-dunes-or"},
		{"only name", "Augusta National", "", "", "augusta-national"},
		{"apostrophes and periods are deleted", "St. Andrew's Golf Club", "O'Fallon", "MO", "st-andrews-golf-club-ofallon-mo"},
		{"abbreviations", "Dr. Martin's", "Mt. Pleasant", "SC", "dr-martins-mt-pleasant-sc"},
		{"literal hyphens are kept", "St. Andrew's -- Old Course", "Ardsley", "NY", "st-andrews----old-course-ardsley-ny"},
		{"spaced hyphen", "Golf - Club", "", "", "golf---club"},
		{"symbols between words", "Golf & Country Club (North)", "", "", "golf-country-club-north"},
		{"underscores are deleted", "Jones_Creek", "", "", "jonescreek"},
		{"non breaking space", "Mid\u00a0Pines", "", "NC", "mid-pines-nc"},
		{"leading and trailing junk", "  ***Links***  ", "", "", "links"},
		{"leading and trailing hyphens", " -Links- ", "", "", "links"},
		{"non ascii letters are deleted", "Cañon", "City", "CO", "caon-city-co"},
		{"all junk", "!!!", "", "", ""},
		{"empty", "", "", "", ""},
		{"digits kept", "Course 18", "Area 51", "NV", "course-18-area-51-nv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.course, tt.city, tt.st)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, slugPattern, got)
		})
	}
}

// TestGenerate_Deterministic tests that identical triples always collide
func TestGenerate_Deterministic(t *testing.T) {
	a := Generate("Pine Valley Golf Club", "Pine Valley", "NJ")
	b := Generate("PINE VALLEY GOLF CLUB", "pine valley", "nj")
	assert.Equal(t, a, b)
}

// TestGenerate_Truncates tests the 200 character cap, applied after trimming
func TestGenerate_Truncates(t *testing.T) {
	long := strings.Repeat("abcd ", 100)
	got := Generate(long, "City", "ST")

	assert.Len(t, got, 200)
	assert.Regexp(t, slugPattern, got)
	assert.Equal(t, strings.Repeat("abcd-", 40), got, "a hyphen at the cut is kept")
	assert.False(t, strings.HasPrefix(got, "-"))
}

// TestGenerate_PatternHolds tests the output alphabet over awkward inputs
func TestGenerate_PatternHolds(t *testing.T) {
	inputs := []string{
		"", "-", "---", "日本", "Ω≈ç√", "a\tb\nc", "Üüü", strings.Repeat("é", 300),
		strings.Repeat("x", 199) + " y", "Golf & Country Club (North)",
	}
	for _, in := range inputs {
		assert.Regexp(t, slugPattern, Generate(in, in, in), "input %q", in)
	}
}
