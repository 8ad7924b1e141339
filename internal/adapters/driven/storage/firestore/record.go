package firestore

import (
	"time"

	"cloud.google.com/go/firestore"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// Persisted field names used in updates and queries.
const (
	fieldCountry       = "country"
	fieldState         = "state"
	fieldStale         = "stale"
	fieldStaleAt       = "stale_at"
	fieldLastSeenRunID = "last_seen_run_id"
	fieldUpdatedAt     = "updated_at"
	fieldOSMUpdatedAt  = "osm_updated_at"
)

// record is the Firestore document shape of a course.
type record struct {
	ID             string     `firestore:"id"`
	OSMID          string     `firestore:"osm_id"`
	Name           string     `firestore:"name"`
	NameLower      string     `firestore:"name_lower"`
	NameNorm       string     `firestore:"name_norm"`
	Aliases        []string   `firestore:"aliases"`
	City           string     `firestore:"city"`
	State          string     `firestore:"state"`
	Country        string     `firestore:"country"`
	Lat            float64    `firestore:"lat"`
	Lng            float64    `firestore:"lng"`
	Holes          *int64     `firestore:"holes"`
	Website        string     `firestore:"website"`
	NameTokens     []string   `firestore:"name_tokens"`
	NameNgrams     []string   `firestore:"name_ngrams"`
	NameTokensNorm []string   `firestore:"name_tokens_norm"`
	NameNgramsNorm []string   `firestore:"name_ngrams_norm"`
	Source         string     `firestore:"source"`
	UpdatedAt      time.Time  `firestore:"updated_at,serverTimestamp"`
	OSMUpdatedAt   time.Time  `firestore:"osm_updated_at,serverTimestamp"`
	Fingerprint    string     `firestore:"osm_fingerprint"`
	Stale          bool       `firestore:"stale"`
	StaleAt        *time.Time `firestore:"stale_at"`
	LastSeenRunID  string     `firestore:"last_seen_run_id"`
}

// toRecord maps a course for a full write. UpdatedAt is left zero so the
// server assigns it.
func toRecord(c domain.Course) record {
	r := record{
		ID:             c.ID,
		OSMID:          c.OSMID,
		Name:           c.Name,
		NameLower:      c.NameLower,
		NameNorm:       c.NameNorm,
		Aliases:        c.Aliases,
		City:           c.City,
		State:          c.State,
		Country:        c.Country,
		Lat:            c.Lat,
		Lng:            c.Lng,
		Website:        c.Website,
		NameTokens:     c.NameTokens,
		NameNgrams:     c.NameNgrams,
		NameTokensNorm: c.NameTokensNorm,
		NameNgramsNorm: c.NameNgramsNorm,
		Source:         c.Source,
		Fingerprint:    c.Fingerprint,
		LastSeenRunID:  c.LastSeenRunID,
	}
	if c.Holes != nil {
		h := int64(*c.Holes)
		r.Holes = &h
	}
	if c.Stale && c.StaleAt != nil {
		t := c.StaleAt.UTC()
		r.Stale = true
		r.StaleAt = &t
	}
	return r
}

// setFields is the merge payload of a full write. Only the fields listed
// here are replaced; fields written by other consumers of the collection
// survive. Both timestamps are assigned by the server.
func setFields(c domain.Course) map[string]any {
	r := toRecord(c)
	return map[string]any{
		"id":               r.ID,
		"osm_id":           r.OSMID,
		"name":             r.Name,
		"name_lower":       r.NameLower,
		"name_norm":        r.NameNorm,
		"aliases":          r.Aliases,
		"city":             r.City,
		fieldState:         r.State,
		fieldCountry:       r.Country,
		"lat":              r.Lat,
		"lng":              r.Lng,
		"holes":            r.Holes,
		"website":          r.Website,
		"name_tokens":      r.NameTokens,
		"name_ngrams":      r.NameNgrams,
		"name_tokens_norm": r.NameTokensNorm,
		"name_ngrams_norm": r.NameNgramsNorm,
		"source":           r.Source,
		fieldUpdatedAt:     firestore.ServerTimestamp,
		fieldOSMUpdatedAt:  firestore.ServerTimestamp,
		"osm_fingerprint":  r.Fingerprint,
		fieldStale:         r.Stale,
		fieldStaleAt:       r.StaleAt,
		fieldLastSeenRunID: r.LastSeenRunID,
	}
}

// toCourse maps a stored document back. id is the document ID, which wins
// over a missing or stale id field.
func (r record) toCourse(id string) domain.Course {
	c := domain.Course{
		ID:             id,
		OSMID:          r.OSMID,
		Name:           r.Name,
		NameLower:      r.NameLower,
		NameNorm:       r.NameNorm,
		Aliases:        r.Aliases,
		City:           r.City,
		State:          r.State,
		Country:        r.Country,
		Lat:            r.Lat,
		Lng:            r.Lng,
		Website:        r.Website,
		NameTokens:     r.NameTokens,
		NameNgrams:     r.NameNgrams,
		NameTokensNorm: r.NameTokensNorm,
		NameNgramsNorm: r.NameNgramsNorm,
		Source:         r.Source,
		UpdatedAt:      r.UpdatedAt.UTC(),
		Fingerprint:    r.Fingerprint,
		LastSeenRunID:  r.LastSeenRunID,
	}
	if r.Holes != nil {
		h := int(*r.Holes)
		c.Holes = &h
	}
	if r.Stale && r.StaleAt != nil {
		c.MarkStale(r.StaleAt.UTC())
	}
	return c
}

// touchUpdates confirms a course in runID and clears staleness.
func touchUpdates(runID string) []firestore.Update {
	return []firestore.Update{
		{Path: fieldLastSeenRunID, Value: runID},
		{Path: fieldStale, Value: false},
		{Path: fieldStaleAt, Value: nil},
	}
}

// markStaleUpdates flags a course stale at t.
func markStaleUpdates(t time.Time) []firestore.Update {
	return []firestore.Update{
		{Path: fieldStale, Value: true},
		{Path: fieldStaleAt, Value: t.UTC()},
	}
}

// condition is a single pushed-down query predicate.
type condition struct {
	Path  string
	Op    string
	Value any
}

// pushdown returns the predicates of f that Firestore evaluates. The
// last_seen_run_id inequality is left to the caller so that the query
// carries at most one range filter.
func pushdown(f domain.CourseFilter) []condition {
	var conds []condition
	if f.Country != "" {
		conds = append(conds, condition{fieldCountry, "==", f.Country})
	}
	if f.State != "" {
		conds = append(conds, condition{fieldState, "==", f.State})
	}
	if f.Stale != nil {
		conds = append(conds, condition{fieldStale, "==", *f.Stale})
	}
	if f.StaleAtOrBefore != nil {
		conds = append(conds, condition{fieldStaleAt, "<=", f.StaleAtOrBefore.UTC()})
	}
	return conds
}
