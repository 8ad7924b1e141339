package services

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/everydaystudy/golf-db-loader/internal/adapters/driven/storage/memory"
	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
)

// --- Test doubles shared by the sync and lifecycle tests ---

var (
	california = domain.Partition{Code: "CA", Country: "US"}
	oregon     = domain.Partition{Code: "OR", Country: "US"}
	nevada     = domain.Partition{Code: "NV", Country: "US"}
	arizona    = domain.Partition{Code: "AZ", Country: "US"}

	testPartitions = domain.NewPartitionSet(california, oregon, nevada, arizona)
)

// testClock is a settable clock.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeConnector serves canned elements per partition code.
type fakeConnector struct {
	mu       sync.Mutex
	elements map[string][]domain.RawElement
	errs     map[string]error
	calls    []string
}

var _ driven.SourceConnector = (*fakeConnector)(nil)

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		elements: make(map[string][]domain.RawElement),
		errs:     make(map[string]error),
	}
}

func (f *fakeConnector) Name() string { return "fake" }

func (f *fakeConnector) Fetch(ctx context.Context, p domain.Partition) ([]domain.RawElement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p.Code)
	if err := ctx.Err(); err != nil {
		return nil, &domain.SourceError{Partition: p.Code, Attempts: 1, Err: err}
	}
	if err, ok := f.errs[p.Code]; ok {
		return nil, err
	}
	return f.elements[p.Code], nil
}

func (f *fakeConnector) set(code string, elements ...domain.RawElement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements[code] = elements
}

func (f *fakeConnector) fail(code string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[code] = err
}

func (f *fakeConnector) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// golfCourse returns a way element for a golf course.
func golfCourse(id int64, name, city string) domain.RawElement {
	return domain.RawElement{
		Type:   "way",
		ID:     id,
		Center: &domain.Coordinate{Lat: 36.5 + float64(id)/1000, Lon: -121.9},
		Tags: map[string]string{
			"leisure":   "golf_course",
			"name":      name,
			"addr:city": city,
		},
	}
}

// recordingStore wraps the memory store, records batch sizes and can be
// told to fail specific calls.
type recordingStore struct {
	*memory.DocumentStore

	mu          sync.Mutex
	readSizes   []int
	commitSizes []int
	deleteSizes []int

	failGet    error
	failCommit error
	failQuery  error
	failDelete error

	// ignoreFilter makes Query return every document.
	ignoreFilter bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{DocumentStore: memory.NewDocumentStore()}
}

func (s *recordingStore) GetBatch(ctx context.Context, ids []string) (map[string]domain.Course, error) {
	s.mu.Lock()
	s.readSizes = append(s.readSizes, len(ids))
	err := s.failGet
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.DocumentStore.GetBatch(ctx, ids)
}

func (s *recordingStore) CommitBatch(ctx context.Context, ops []domain.WriteOp) error {
	s.mu.Lock()
	s.commitSizes = append(s.commitSizes, len(ops))
	err := s.failCommit
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.DocumentStore.CommitBatch(ctx, ops)
}

func (s *recordingStore) DeleteBatch(ctx context.Context, ids []string) error {
	s.mu.Lock()
	s.deleteSizes = append(s.deleteSizes, len(ids))
	err := s.failDelete
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.DocumentStore.DeleteBatch(ctx, ids)
}

func (s *recordingStore) Query(ctx context.Context, filter domain.CourseFilter) iter.Seq2[domain.Course, error] {
	s.mu.Lock()
	err := s.failQuery
	ignore := s.ignoreFilter
	s.mu.Unlock()
	if err != nil {
		return func(yield func(domain.Course, error) bool) {
			yield(domain.Course{}, err)
		}
	}
	if ignore {
		filter = domain.CourseFilter{}
	}
	return s.DocumentStore.Query(ctx, filter)
}

func (s *recordingStore) commits() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.commitSizes...)
}

func (s *recordingStore) reads() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.readSizes...)
}

func (s *recordingStore) deletes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.deleteSizes...)
}

// seed writes courses directly into the store.
func seed(s driven.DocumentStore, courses ...domain.Course) error {
	ops := make([]domain.WriteOp, len(courses))
	for i, c := range courses {
		ops[i] = domain.SetOp(c)
	}
	return s.CommitBatch(context.Background(), ops)
}
