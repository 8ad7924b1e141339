package driven

import (
	"context"
	"iter"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// DocumentStore persists courses keyed by ID.
// All calls are batched; callers keep batches within domain.MaxReadBatch
// and domain.MaxCommitBatch. Failures are returned as *domain.StoreError.
type DocumentStore interface {
	// GetBatch returns the stored courses for ids. Missing ids are absent
	// from the result.
	GetBatch(ctx context.Context, ids []string) (map[string]domain.Course, error)

	// CommitBatch applies a mixed sequence of operations.
	CommitBatch(ctx context.Context, ops []domain.WriteOp) error

	// Query lazily yields every course matching the filter.
	// Iteration stops at the first error, which is yielded with a zero course.
	Query(ctx context.Context, filter domain.CourseFilter) iter.Seq2[domain.Course, error]

	// DeleteBatch removes the courses with the given ids.
	DeleteBatch(ctx context.Context, ids []string) error

	// Close releases resources.
	Close() error
}
