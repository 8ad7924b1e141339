// Package normalisers holds implementations of driven.Normaliser and the
// text helpers they share.
//
//   - osm: maps OpenStreetMap elements to courses
//   - text: lowercasing, diacritic folding, tokens and n-grams
package normalisers
