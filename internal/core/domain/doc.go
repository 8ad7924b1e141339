// Package domain defines the core business entities for the golf course loader.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Course: The canonical document persisted per course
//   - RawElement: An untyped OSM element returned by the source
//   - Partition: A geographic unit of work (a US state)
//   - WriteOp: A single staged mutation against the document store
//   - CourseFilter: A predicate used for stale/purge scans
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
