// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration with environment variable overrides
//
// FindCredentials locates a Google service account key next to the
// executable or in the working directory.
package file
