// Package services implements the driving port interfaces.
// Services contain the sync pipeline and stale lifecycle, and
// orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no CGO and never touch the filesystem.
package services
