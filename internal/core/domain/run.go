package domain

import (
	"fmt"
	"strings"
)

// RunStatus is the outcome of a whole run.
type RunStatus string

const (
	// RunOK means every requested partition completed.
	RunOK RunStatus = "ok"

	// RunDegraded means at least one partition was abandoned after a source
	// failure but the run otherwise completed.
	RunDegraded RunStatus = "degraded"

	// RunAborted means a store call failed and the run stopped.
	RunAborted RunStatus = "aborted"
)

// PartitionStatus is the outcome of a single partition.
type PartitionStatus string

const (
	PartitionOK       PartitionStatus = "ok"
	PartitionFailed   PartitionStatus = "failed"
	PartitionAborted  PartitionStatus = "aborted"
	PartitionCanceled PartitionStatus = "canceled"
)

// PartitionSummary holds per-partition counters.
type PartitionSummary struct {
	Code   string
	Status PartitionStatus

	// Fetched is the number of raw elements returned by the source.
	Fetched int

	// Accepted and Rejected split Fetched by normaliser outcome.
	Accepted int
	Rejected int

	// Collapsed counts accepted records that shared an ID with a later
	// record in the same partition.
	Collapsed int

	// Written counts full-document writes (or would-be writes in preview).
	Written int

	// Touched counts cheap last-seen updates of unchanged documents.
	Touched int

	// Unchanged counts documents needing no write at all.
	Unchanged int

	Err error
}

// RunSummary aggregates the outcome of a run.
type RunSummary struct {
	RunID   string
	Preview bool
	Status  RunStatus

	Partitions []PartitionSummary

	// Marked counts courses flagged stale (or that would be, in preview).
	Marked int

	// Purged counts deleted stale courses (or that would be, in preview).
	Purged int

	// Sample holds up to RunOptions.SampleSize would-be documents in preview.
	Sample []Course

	// Err is set when the run aborted.
	Err error
}

// Totals sums the partition counters.
func (s *RunSummary) Totals() PartitionSummary {
	total := PartitionSummary{Code: "total", Status: PartitionOK}
	for _, p := range s.Partitions {
		total.Fetched += p.Fetched
		total.Accepted += p.Accepted
		total.Rejected += p.Rejected
		total.Collapsed += p.Collapsed
		total.Written += p.Written
		total.Touched += p.Touched
		total.Unchanged += p.Unchanged
		if p.Status != PartitionOK && total.Status == PartitionOK {
			total.Status = p.Status
		}
	}
	return total
}

// Failed returns the codes of partitions that did not complete.
func (s *RunSummary) Failed() []string {
	var codes []string
	for _, p := range s.Partitions {
		if p.Status != PartitionOK {
			codes = append(codes, p.Code)
		}
	}
	return codes
}

// String renders a one-line summary.
func (s *RunSummary) String() string {
	t := s.Totals()
	var b strings.Builder
	fmt.Fprintf(&b, "run %s %s: fetched=%d accepted=%d rejected=%d written=%d touched=%d unchanged=%d marked=%d purged=%d",
		s.RunID, s.Status, t.Fetched, t.Accepted, t.Rejected, t.Written, t.Touched, t.Unchanged, s.Marked, s.Purged)
	if failed := s.Failed(); len(failed) > 0 {
		fmt.Fprintf(&b, " failed=%s", strings.Join(failed, ","))
	}
	return b.String()
}
