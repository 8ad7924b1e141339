package driving

import (
	"context"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// SyncEngine runs the fetch, normalise, compare and write pipeline.
type SyncEngine interface {
	// Run syncs the requested partitions and then applies the stale
	// lifecycle. The summary is returned even when err is non-nil.
	Run(ctx context.Context, opts RunOptions) (*domain.RunSummary, error)

	// Partitions returns the partitions the engine knows about.
	Partitions() domain.PartitionSet
}

// RunOptions configures a single invocation.
type RunOptions struct {
	// RunID identifies the run. Generated when empty.
	RunID string

	// Partitions lists partition codes. Empty means all partitions.
	Partitions []string

	// Preview runs fetch, normalise and compare without writing.
	Preview bool

	// SkipUnchanged elides full writes when the fingerprint is unchanged.
	SkipUnchanged bool

	// MarkStale flags courses not seen in this run as stale.
	MarkStale bool

	// PurgeStaleDays deletes courses stale for at least this many days.
	// Zero or negative disables purging.
	PurgeStaleDays int

	// Concurrency bounds the number of partitions processed at once.
	// Values below 1 mean sequential.
	Concurrency int

	// SampleSize bounds RunSummary.Sample in preview mode.
	SampleSize int
}

// LifecycleManager marks and purges stale courses.
type LifecycleManager interface {
	// MarkStale flags courses in the partitions not seen by runID.
	// In preview nothing is written, and IDs in seen count as present
	// because their last_seen_run_id was never stamped.
	MarkStale(ctx context.Context, runID string, partitions []domain.Partition, preview bool, seen map[string]struct{}) (int, error)

	// PurgeStale deletes courses stale for at least olderThanDays.
	PurgeStale(ctx context.Context, partitions []domain.Partition, olderThanDays int, preview bool) (int, error)
}
