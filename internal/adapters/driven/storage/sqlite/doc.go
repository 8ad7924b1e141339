// Package sqlite provides a SQLite-based implementation of driven.DocumentStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It is the local backend for runs that do
// not target Firestore, and stores one row per course in the courses table.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Applied versions are recorded in schema_migrations.
// Slice fields are stored as JSON arrays; timestamps as Unix nanoseconds so that
// purge cutoffs compare numerically.
//
// # Data Location
//
// By default, the database is stored at ~/.golf-loader/data/courses.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Each CommitBatch and DeleteBatch runs in one transaction.
package sqlite
