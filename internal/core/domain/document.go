package domain

import "time"

const (
	// MaxReadBatch is the maximum number of IDs per GetBatch call.
	MaxReadBatch = 300

	// MaxCommitBatch is the maximum number of operations per CommitBatch or
	// DeleteBatch call. The store rejects batches above StoreBatchCeiling.
	MaxCommitBatch = 400

	// StoreBatchCeiling is the hard per-batch operation limit of the store.
	StoreBatchCeiling = 500

	// MaxIDLength is the maximum length of a course ID.
	MaxIDLength = 200
)

// Course is the canonical document persisted for a single golf course.
// It is produced by the normaliser and is the unit of record in the store.
type Course struct {
	// ID is the slug derived from (Name, City, State).
	ID string

	// OSMID is the source-native identifier, e.g. "way:123456789".
	OSMID string

	// Name is the display name as tagged in the source.
	Name string

	// NameLower is Name lowercased.
	NameLower string

	// NameNorm is Name with diacritics and quote characters stripped.
	NameNorm string

	// Aliases holds alternative names in source order.
	Aliases []string

	City    string
	State   string
	Country string
	Lat     float64
	Lng     float64

	// Holes is nil when the source does not tag a hole count.
	Holes *int

	Website string

	// Search fields derived from Name.
	NameTokens     []string
	NameNgrams     []string
	NameTokensNorm []string
	NameNgramsNorm []string

	// Source is the provenance tag, e.g. "osm:2026-10".
	Source string

	// UpdatedAt is set whenever the full document is written.
	UpdatedAt time.Time

	// Fingerprint is the content hash over the change-tracked fields.
	Fingerprint string

	// Stale is true once the course was not seen in a run that marks stale.
	// StaleAt is non-nil exactly when Stale is true.
	Stale   bool
	StaleAt *time.Time

	// LastSeenRunID is the last run that confirmed this course in the source.
	LastSeenRunID string
}

// MarkActive stamps the course as seen by runID and clears staleness.
func (c *Course) MarkActive(runID string) {
	c.LastSeenRunID = runID
	c.Stale = false
	c.StaleAt = nil
}

// MarkStale flags the course as stale at t.
func (c *Course) MarkStale(t time.Time) {
	c.Stale = true
	c.StaleAt = &t
}
