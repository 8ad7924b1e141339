// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceConnector: Fetches raw elements for a partition (Overpass)
//   - Normaliser: Turns raw elements into canonical courses
//   - DocumentStore: Batched course persistence (Firestore, SQLite, memory)
//
// # Optional Interfaces
//
//   - MetricsExporter: Publishes run counters. Nil disables export.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
