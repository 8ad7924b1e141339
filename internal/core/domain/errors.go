package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation indicates a raw record was rejected by the normaliser.
	ErrValidation = errors.New("validation failed")

	// ErrSourceTransient indicates a retryable failure talking to the source.
	ErrSourceTransient = errors.New("transient source error")

	// ErrSourcePermanent indicates a source failure that must not be retried.
	ErrSourcePermanent = errors.New("permanent source error")

	// ErrStore indicates a document store call failed.
	ErrStore = errors.New("store error")

	// ErrConfig indicates invalid configuration or flag combination.
	ErrConfig = errors.New("config error")

	// ErrRateLimited indicates the source rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError describes why a raw record was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// SourceError is a failure fetching a partition from the source.
type SourceError struct {
	Partition string
	Attempts  int
	Permanent bool
	Err       error
}

func (e *SourceError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("fetch %s: %s after %d attempt(s): %v", e.Partition, kind, e.Attempts, e.Err)
}

// Unwrap exposes both the classification sentinel and the cause.
func (e *SourceError) Unwrap() []error {
	if e.Permanent {
		return []error{ErrSourcePermanent, e.Err}
	}
	return []error{ErrSourceTransient, e.Err}
}

// StoreError is a failure of a document store call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrStore and the cause.
func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

// ConfigError is an invalid configuration value detected before any I/O.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap allows errors.Is(err, ErrConfig).
func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// IsTransient reports whether err is classified as a retryable source error.
func IsTransient(err error) bool {
	var se *SourceError
	if errors.As(err, &se) {
		return !se.Permanent
	}
	return errors.Is(err, ErrSourceTransient) || errors.Is(err, ErrRateLimited)
}
