package domain

import "time"

// RawElement is a single element returned by the Overpass API.
// It is the connector's output before normalisation.
type RawElement struct {
	// Type is the OSM element type: "node", "way" or "relation".
	Type string

	// ID is the OSM element ID, unique per Type.
	ID int64

	// Lat and Lon are set for nodes.
	Lat *float64
	Lon *float64

	// Center is set for ways and relations when "out center" is requested.
	Center *Coordinate

	// Tags are the OSM key/value tags.
	Tags map[string]string
}

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Position returns the element's coordinate, preferring the element's own
// lat/lon over its center. The second return is false when neither is set.
func (e RawElement) Position() (Coordinate, bool) {
	if e.Lat != nil && e.Lon != nil {
		return Coordinate{Lat: *e.Lat, Lon: *e.Lon}, true
	}
	if e.Center != nil {
		return *e.Center, true
	}
	return Coordinate{}, false
}

// OpKind identifies the type of a staged write.
type OpKind int

const (
	// OpSet writes the full course, replacing the stored document.
	OpSet OpKind = iota

	// OpTouch updates last_seen_run_id and clears stale/stale_at only.
	OpTouch

	// OpMarkStale sets stale=true and stale_at.
	OpMarkStale
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "set"
	case OpTouch:
		return "touch"
	case OpMarkStale:
		return "mark_stale"
	default:
		return "unknown"
	}
}

// WriteOp is a single mutation staged for CommitBatch.
type WriteOp struct {
	Kind OpKind

	// ID is the target document.
	ID string

	// Course is the full document for OpSet.
	Course *Course

	// RunID is the run stamped by OpTouch.
	RunID string

	// At is the stale timestamp for OpMarkStale.
	At time.Time
}

// SetOp returns a full-document write.
func SetOp(c Course) WriteOp {
	return WriteOp{Kind: OpSet, ID: c.ID, Course: &c}
}

// TouchOp returns a cheap last-seen update.
func TouchOp(id, runID string) WriteOp {
	return WriteOp{Kind: OpTouch, ID: id, RunID: runID}
}

// MarkStaleOp returns a stale-marking update.
func MarkStaleOp(id string, at time.Time) WriteOp {
	return WriteOp{Kind: OpMarkStale, ID: id, At: at}
}

// Apply applies the operation to an existing course and returns the result.
// For OpSet the existing document is ignored.
func (op WriteOp) Apply(existing Course) Course {
	switch op.Kind {
	case OpSet:
		if op.Course != nil {
			return *op.Course
		}
	case OpTouch:
		existing.MarkActive(op.RunID)
	case OpMarkStale:
		existing.MarkStale(op.At)
	}
	return existing
}
