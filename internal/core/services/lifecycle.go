package services

import (
	"context"
	"slices"
	"time"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driving"
	"github.com/everydaystudy/golf-db-loader/internal/logger"
)

// Ensure LifecycleManager implements the interface.
var _ driving.LifecycleManager = (*LifecycleManager)(nil)

// day is the purge threshold unit.
const day = 24 * time.Hour

// LifecycleManager marks unseen courses stale and purges old stale ones.
// It is the only component that sets stale=true or deletes documents.
type LifecycleManager struct {
	store driven.DocumentStore
	now   func() time.Time
}

// LifecycleOption configures a LifecycleManager.
type LifecycleOption func(*LifecycleManager)

// WithLifecycleClock sets the clock used for stale_at and purge cutoffs.
func WithLifecycleClock(now func() time.Time) LifecycleOption {
	return func(l *LifecycleManager) {
		l.now = now
	}
}

// NewLifecycleManager creates a lifecycle manager over store.
func NewLifecycleManager(store driven.DocumentStore, opts ...LifecycleOption) *LifecycleManager {
	l := &LifecycleManager{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MarkStale flags every active course in partitions whose last_seen_run_id
// differs from runID. Courses already stale keep their original stale_at.
// In preview the candidates not in seen are counted but not written.
func (l *LifecycleManager) MarkStale(
	ctx context.Context,
	runID string,
	partitions []domain.Partition,
	preview bool,
	seen map[string]struct{},
) (int, error) {
	if runID == "" {
		return 0, &domain.ConfigError{Field: "run-id", Reason: "required for stale marking"}
	}

	at := l.now().UTC()
	total := 0
	for _, p := range partitions {
		filter := domain.CourseFilter{
			Country:      p.Country,
			State:        p.Code,
			Stale:        domain.Bool(false),
			NotSeenInRun: runID,
		}
		ids, err := l.collect(ctx, filter)
		if err != nil {
			return total, err
		}

		if !preview {
			for _, chunk := range chunks(ids, domain.MaxCommitBatch) {
				ops := make([]domain.WriteOp, len(chunk))
				for i, id := range chunk {
					ops[i] = domain.MarkStaleOp(id, at)
				}
				if err := l.store.CommitBatch(ctx, ops); err != nil {
					return total, storeError("commit", err)
				}
				total += len(chunk)
			}
		} else {
			ids = slices.DeleteFunc(ids, func(id string) bool {
				_, ok := seen[id]
				return ok
			})
			total += len(ids)
		}

		if len(ids) > 0 {
			logger.Info("Partition %s: %d course(s) marked stale", p.Code, len(ids))
		}
	}
	return total, nil
}

// PurgeStale deletes courses in partitions that have been stale for at
// least olderThanDays. Active courses are never selected. A threshold of
// zero or less is a no-op.
func (l *LifecycleManager) PurgeStale(
	ctx context.Context,
	partitions []domain.Partition,
	olderThanDays int,
	preview bool,
) (int, error) {
	if olderThanDays <= 0 {
		return 0, nil
	}

	cutoff := l.now().UTC().Add(-time.Duration(olderThanDays) * day)
	total := 0
	for _, p := range partitions {
		filter := domain.CourseFilter{
			State:           p.Code,
			Stale:           domain.Bool(true),
			StaleAtOrBefore: &cutoff,
		}
		ids, err := l.collect(ctx, filter)
		if err != nil {
			return total, err
		}

		if !preview {
			for _, chunk := range chunks(ids, domain.MaxCommitBatch) {
				if err := l.store.DeleteBatch(ctx, chunk); err != nil {
					return total, storeError("delete", err)
				}
				total += len(chunk)
			}
		} else {
			total += len(ids)
		}

		if len(ids) > 0 {
			logger.Info("Partition %s: %d stale course(s) purged", p.Code, len(ids))
		}
	}
	return total, nil
}

// collect drains a query into a list of IDs before any write, re-checking
// the filter on every result.
func (l *LifecycleManager) collect(ctx context.Context, filter domain.CourseFilter) ([]string, error) {
	var ids []string
	for c, err := range l.store.Query(ctx, filter) {
		if err != nil {
			return nil, storeError("query", err)
		}
		if !filter.Matches(c) {
			continue
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}
