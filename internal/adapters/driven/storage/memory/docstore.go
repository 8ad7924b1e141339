package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// Stats counts calls made against a DocumentStore.
type Stats struct {
	Reads   int
	Commits int
	Deletes int
	Queries int

	// Ops is the total number of write operations committed.
	Ops int
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Commits are atomic: a batch either applies fully or not at all.
type DocumentStore struct {
	mu      sync.RWMutex
	courses map[string]domain.Course
	stats   Stats
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		courses: make(map[string]domain.Course),
	}
}

// GetBatch returns the stored courses for ids.
func (s *DocumentStore) GetBatch(ctx context.Context, ids []string) (map[string]domain.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "get", Err: err}
	}
	if len(ids) > domain.StoreBatchCeiling {
		return nil, &domain.StoreError{Op: "get", Err: fmt.Errorf("%d ids exceeds batch limit %d", len(ids), domain.StoreBatchCeiling)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Reads++

	result := make(map[string]domain.Course, len(ids))
	for _, id := range ids {
		if c, ok := s.courses[id]; ok {
			result[id] = clone(c)
		}
	}
	return result, nil
}

// CommitBatch applies ops atomically. Touch and mark-stale operations on
// missing documents fail the whole batch.
func (s *DocumentStore) CommitBatch(ctx context.Context, ops []domain.WriteOp) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "commit", Err: err}
	}
	if len(ops) > domain.StoreBatchCeiling {
		return &domain.StoreError{Op: "commit", Err: fmt.Errorf("%d operations exceeds batch limit %d", len(ops), domain.StoreBatchCeiling)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]domain.Course, len(ops))
	order := make([]string, 0, len(ops))
	for _, op := range ops {
		if op.ID == "" {
			return &domain.StoreError{Op: "commit", Err: fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)}
		}
		existing, ok := staged[op.ID]
		if !ok {
			existing, ok = s.courses[op.ID]
		}
		if !ok && op.Kind != domain.OpSet {
			return &domain.StoreError{Op: "commit", Err: fmt.Errorf("%s %s: %w", op.Kind, op.ID, domain.ErrNotFound)}
		}
		if _, seen := staged[op.ID]; !seen {
			order = append(order, op.ID)
		}
		staged[op.ID] = clone(op.Apply(existing))
	}

	for _, id := range order {
		s.courses[id] = staged[id]
	}
	s.stats.Commits++
	s.stats.Ops += len(ops)
	return nil
}

// Query yields matching courses ordered by ID. The result set is captured
// when iteration starts.
func (s *DocumentStore) Query(ctx context.Context, filter domain.CourseFilter) iter.Seq2[domain.Course, error] {
	return func(yield func(domain.Course, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.Course{}, &domain.StoreError{Op: "query", Err: err})
			return
		}

		s.mu.Lock()
		s.stats.Queries++
		var matched []domain.Course
		for _, c := range s.courses {
			if filter.Matches(c) {
				matched = append(matched, clone(c))
			}
		}
		s.mu.Unlock()

		slices.SortFunc(matched, func(a, b domain.Course) int {
			switch {
			case a.ID < b.ID:
				return -1
			case a.ID > b.ID:
				return 1
			}
			return 0
		})

		for _, c := range matched {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// DeleteBatch removes the courses with the given ids.
func (s *DocumentStore) DeleteBatch(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "delete", Err: err}
	}
	if len(ids) > domain.StoreBatchCeiling {
		return &domain.StoreError{Op: "delete", Err: fmt.Errorf("%d ids exceeds batch limit %d", len(ids), domain.StoreBatchCeiling)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.courses, id)
	}
	s.stats.Deletes++
	return nil
}

// Close is a no-op.
func (s *DocumentStore) Close() error {
	return nil
}

// Get returns a stored course by ID.
func (s *DocumentStore) Get(id string) (domain.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return domain.Course{}, false
	}
	return clone(c), true
}

// Len returns the number of stored courses.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

// Stats returns the call counters.
func (s *DocumentStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// ResetStats zeroes the call counters.
func (s *DocumentStore) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
}

// clone deep-copies the slices and pointers of c.
func clone(c domain.Course) domain.Course {
	c.Aliases = slices.Clone(c.Aliases)
	c.NameTokens = slices.Clone(c.NameTokens)
	c.NameNgrams = slices.Clone(c.NameNgrams)
	c.NameTokensNorm = slices.Clone(c.NameTokensNorm)
	c.NameNgramsNorm = slices.Clone(c.NameNgramsNorm)
	if c.Holes != nil {
		h := *c.Holes
		c.Holes = &h
	}
	if c.StaleAt != nil {
		t := *c.StaleAt
		c.StaleAt = &t
	}
	return c
}
