package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestCourseFilter_Matches tests each filter constraint
func TestCourseFilter_Matches(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)
	cutoff := now.Add(-24 * time.Hour)

	active := Course{Country: "US", State: "CA", LastSeenRunID: "run-1"}
	staleOld := Course{Country: "US", State: "CA", Stale: true, StaleAt: &old}
	staleNew := Course{Country: "US", State: "CA", Stale: true, StaleAt: &now}

	tests := []struct {
		name   string
		filter CourseFilter
		course Course
		want   bool
	}{
		{"empty filter matches", CourseFilter{}, active, true},
		{"country mismatch", CourseFilter{Country: "CA"}, active, false},
		{"state match", CourseFilter{State: "CA"}, active, true},
		{"state mismatch", CourseFilter{State: "NV"}, active, false},
		{"stale false matches active", CourseFilter{Stale: Bool(false)}, active, true},
		{"stale false excludes stale", CourseFilter{Stale: Bool(false)}, staleOld, false},
		{"seen in run excluded", CourseFilter{NotSeenInRun: "run-1"}, active, false},
		{"unseen in run kept", CourseFilter{NotSeenInRun: "run-2"}, active, true},
		{"stale before cutoff", CourseFilter{Stale: Bool(true), StaleAtOrBefore: &cutoff}, staleOld, true},
		{"stale after cutoff", CourseFilter{Stale: Bool(true), StaleAtOrBefore: &cutoff}, staleNew, false},
		{"cutoff needs stale_at", CourseFilter{StaleAtOrBefore: &cutoff}, active, false},
		{"cutoff is inclusive", CourseFilter{StaleAtOrBefore: &old}, staleOld, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.course))
		})
	}
}
