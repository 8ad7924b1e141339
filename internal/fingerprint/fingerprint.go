// Package fingerprint computes content hashes used to detect meaningful
// changes to a course without comparing whole documents.
//
// Digests must stay byte-compatible with the osm_fingerprint values already
// stored in the collection: keys sorted, compact separators, no ASCII or
// HTML escaping, coordinates in shortest round-trip form.
//
// The hash is for cheap equality checks only and is not a security boundary.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/normalisers/text"
)

// Fields is the change-tracked subset of a course.
type Fields struct {
	NameLower string
	Aliases   []string
	City      string
	State     string
	Country   string
	Lat       float64
	Lng       float64
	Holes     *int
	Website   string
}

// payload is serialised with its keys in alphabetical order. Adding,
// renaming or reordering fields changes every stored fingerprint.
type payload struct {
	Aliases   []string `json:"aliases"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Holes     *int     `json:"holes"`
	Lat       coord    `json:"lat"`
	Lng       coord    `json:"lng"`
	NameLower string   `json:"name_lower"`
	State     string   `json:"state"`
	Website   string   `json:"website"`
}

// FromCourse extracts the tracked fields of c.
func FromCourse(c domain.Course) Fields {
	return Fields{
		NameLower: c.NameLower,
		Aliases:   c.Aliases,
		City:      c.City,
		State:     c.State,
		Country:   c.Country,
		Lat:       c.Lat,
		Lng:       c.Lng,
		Holes:     c.Holes,
		Website:   c.Website,
	}
}

// Compute returns the hex SHA-256 of the canonical serialisation of f.
// Alias order and case do not affect the result.
func Compute(f Fields) string {
	aliases := make([]string, 0, len(f.Aliases))
	for _, a := range f.Aliases {
		aliases = append(aliases, text.Lower(a))
	}
	sort.Strings(aliases)

	p := payload{
		Aliases:   aliases,
		City:      f.City,
		Country:   f.Country,
		Holes:     f.Holes,
		Lat:       coord(f.Lat),
		Lng:       coord(f.Lng),
		NameLower: f.NameLower,
		State:     f.State,
		Website:   f.Website,
	}

	sum := sha256.Sum256(encode(p))
	return hex.EncodeToString(sum[:])
}

// Course is shorthand for Compute(FromCourse(c)).
func Course(c domain.Course) string {
	return Compute(FromCourse(c))
}

func encode(p payload) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Strings, finite numbers and ints cannot fail to encode.
	_ = enc.Encode(p)
	return unescapeSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// unescapeSeparators writes U+2028 and U+2029 raw. encoding/json always
// escapes them, even with HTML escaping off.
func unescapeSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if i+5 < len(b) && string(b[i+1:i+6]) == "u2028" {
			out = append(out, "\u2028"...)
			i += 5
			continue
		}
		if i+5 < len(b) && string(b[i+1:i+6]) == "u2029" {
			out = append(out, "\u2029"...)
			i += 5
			continue
		}
		// Copy the escape pair so an escaped backslash is never re-read.
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// coord encodes a coordinate in shortest round-trip form with a decimal
// point ("37.0", not "37"), switching to exponent form outside
// 1e-4 <= |v| < 1e16.
type coord float64

func (c coord) MarshalJSON() ([]byte, error) {
	v := float64(c)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		// Not reachable from parsed Overpass JSON.
		return []byte("null"), nil
	}

	e := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err != nil {
		return nil, err
	}
	if exp < -4 || exp >= 16 {
		return []byte(e), nil
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return []byte(s), nil
}
