package domain

import "time"

// CourseFilter selects courses for lifecycle scans.
// Zero-valued fields do not constrain the result. Store adapters push down
// what their backend supports and must still check Matches on every result.
type CourseFilter struct {
	Country string
	State   string

	// Stale constrains the stale flag when non-nil.
	Stale *bool

	// NotSeenInRun excludes courses whose LastSeenRunID equals this value.
	NotSeenInRun string

	// StaleAtOrBefore keeps only courses with a non-nil StaleAt <= this time.
	StaleAtOrBefore *time.Time
}

// Matches reports whether c satisfies every constraint of the filter.
func (f CourseFilter) Matches(c Course) bool {
	if f.Country != "" && c.Country != f.Country {
		return false
	}
	if f.State != "" && c.State != f.State {
		return false
	}
	if f.Stale != nil && c.Stale != *f.Stale {
		return false
	}
	if f.NotSeenInRun != "" && c.LastSeenRunID == f.NotSeenInRun {
		return false
	}
	if f.StaleAtOrBefore != nil {
		if c.StaleAt == nil || c.StaleAt.After(*f.StaleAtOrBefore) {
			return false
		}
	}
	return true
}

// Bool returns a pointer to b, for filter literals.
func Bool(b bool) *bool {
	return &b
}
