// Package overpass implements a source connector for the OpenStreetMap
// Overpass API.
//
// # Architecture
//
// The connector follows the driven port pattern defined in
// [driven.SourceConnector]. It comprises the following components:
//
//   - Connector: runs a partition fetch under the retry policy
//   - Client: posts queries and decodes responses
//   - RateLimiter: proactive throttling plus Retry-After backoff
//   - Query: builds the per-partition Overpass QL
//
// # Error Classification
//
// Timeouts, connection failures, HTTP 429 and 5xx responses, and Overpass
// runtime remarks (server-side timeouts, memory exhaustion) are transient and
// retried. Malformed JSON, missing elements and other 4xx responses are
// permanent and returned after the first attempt.
//
// # Public Instance Etiquette
//
// The public instance at overpass-api.de asks clients to keep to a couple of
// requests per second. The default limiter allows one request every two
// seconds.
package overpass
