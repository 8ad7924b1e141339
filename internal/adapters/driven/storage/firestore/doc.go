// Package firestore provides a Cloud Firestore implementation of
// driven.DocumentStore.
//
// Courses live in a single collection (default "courses"), one document per
// course ID. Field names are the persisted schema names (osm_id, name_lower,
// osm_fingerprint, stale_at, ...). updated_at is assigned by the server on
// every full write.
//
// Writes run in transactions of at most 500 operations, the Firestore
// per-transaction ceiling. Lifecycle queries push the equality filters and the
// stale_at cutoff down to Firestore; the last_seen_run_id inequality is
// checked client side, so a composite index on (country, state, stale) and
// (state, stale, stale_at) is sufficient.
package firestore
