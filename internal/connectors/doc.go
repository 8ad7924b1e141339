// Package connectors holds implementations of driven.SourceConnector.
// Each connector fetches raw elements for one partition from a specific
// upstream API.
//
//   - overpass: OpenStreetMap golf courses via the Overpass API
package connectors
