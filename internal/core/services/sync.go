package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driving"
	"github.com/everydaystudy/golf-db-loader/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncEngine = (*SyncEngine)(nil)

// SyncEngine coordinates the fetch, normalise, compare and write pipeline
// for a set of partitions, then runs the stale lifecycle.
type SyncEngine struct {
	connector  driven.SourceConnector
	normaliser driven.Normaliser
	store      driven.DocumentStore
	lifecycle  driving.LifecycleManager
	partitions domain.PartitionSet
	metrics    driven.MetricsExporter
	now        func() time.Time
}

// SyncOption configures a SyncEngine.
type SyncOption func(*SyncEngine)

// WithSyncClock sets the clock used for updated_at and run IDs.
func WithSyncClock(now func() time.Time) SyncOption {
	return func(e *SyncEngine) {
		e.now = now
	}
}

// WithLifecycle replaces the default lifecycle manager.
func WithLifecycle(l driving.LifecycleManager) SyncOption {
	return func(e *SyncEngine) {
		e.lifecycle = l
	}
}

// WithMetrics publishes every finished run summary, aborted runs included.
func WithMetrics(m driven.MetricsExporter) SyncOption {
	return func(e *SyncEngine) {
		e.metrics = m
	}
}

// NewSyncEngine creates a sync engine over the given partition set.
// Unless WithLifecycle is given, a LifecycleManager over store sharing the
// engine clock is used.
func NewSyncEngine(
	connector driven.SourceConnector,
	normaliser driven.Normaliser,
	store driven.DocumentStore,
	partitions domain.PartitionSet,
	opts ...SyncOption,
) *SyncEngine {
	e := &SyncEngine{
		connector:  connector,
		normaliser: normaliser,
		store:      store,
		partitions: partitions,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.lifecycle == nil {
		e.lifecycle = NewLifecycleManager(store, WithLifecycleClock(e.now))
	}
	return e
}

// Partitions returns the partitions the engine knows about.
func (e *SyncEngine) Partitions() domain.PartitionSet {
	return e.partitions
}

// Run syncs the requested partitions and applies the stale lifecycle.
//
// Unknown partition codes fail with a *domain.ConfigError before any I/O.
// A partition whose fetch fails is recorded and skipped; the run finishes
// as degraded and the returned error joins the partition failures. A store
// error cancels the remaining partitions and aborts the run.
func (e *SyncEngine) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunSummary, error) {
	partitions, err := e.partitions.Resolve(opts.Partitions)
	if err != nil {
		return nil, err
	}
	if opts.PurgeStaleDays < 0 {
		return nil, &domain.ConfigError{Field: "purge-stale-days", Value: fmt.Sprint(opts.PurgeStaleDays), Reason: "must not be negative"}
	}

	runID := opts.RunID
	if runID == "" {
		runID = NewRunID(e.now())
	}

	summary := &domain.RunSummary{
		RunID:      runID,
		Preview:    opts.Preview,
		Status:     domain.RunOK,
		Partitions: make([]domain.PartitionSummary, len(partitions)),
	}
	for i, p := range partitions {
		summary.Partitions[i] = domain.PartitionSummary{Code: p.Code, Status: domain.PartitionCanceled}
	}

	logger.Section("Sync " + runID)
	logger.Info("Syncing %d partition(s), preview=%t skip-unchanged=%t", len(partitions), opts.Preview, opts.SkipUnchanged)

	sample := newSampler(opts.SampleSize)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Concurrency))

	for i, p := range partitions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			ps, err := e.syncPartition(gctx, p, runID, opts, sample)
			summary.Partitions[i] = ps
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return e.abort(summary, err)
	}
	if err := ctx.Err(); err != nil {
		return e.abort(summary, err)
	}
	summary.Sample = sample.courses()

	if err := e.runLifecycle(ctx, summary, partitions, runID, opts, sample.seenIDs()); err != nil {
		return e.abort(summary, err)
	}

	var failures []error
	for _, ps := range summary.Partitions {
		if ps.Status == domain.PartitionFailed {
			failures = append(failures, ps.Err)
		}
	}
	if len(failures) > 0 {
		summary.Status = domain.RunDegraded
		summary.Err = errors.Join(failures...)
	}

	logger.Info("%s", summary)
	e.export(ctx, summary)
	return summary, summary.Err
}

// runLifecycle marks partitions whose fetch succeeded and purges every
// requested partition.
func (e *SyncEngine) runLifecycle(
	ctx context.Context,
	summary *domain.RunSummary,
	partitions []domain.Partition,
	runID string,
	opts driving.RunOptions,
	previewSeen map[string]struct{},
) error {
	if opts.MarkStale {
		var seen []domain.Partition
		for i, p := range partitions {
			if summary.Partitions[i].Status == domain.PartitionOK {
				seen = append(seen, p)
			}
		}
		n, err := e.lifecycle.MarkStale(ctx, runID, seen, opts.Preview, previewSeen)
		summary.Marked = n
		if err != nil {
			return fmt.Errorf("mark stale: %w", err)
		}
	}

	if opts.PurgeStaleDays > 0 {
		n, err := e.lifecycle.PurgeStale(ctx, partitions, opts.PurgeStaleDays, opts.Preview)
		summary.Purged = n
		if err != nil {
			return fmt.Errorf("purge stale: %w", err)
		}
	}
	return nil
}

func (e *SyncEngine) abort(summary *domain.RunSummary, err error) (*domain.RunSummary, error) {
	summary.Status = domain.RunAborted
	summary.Err = err
	logger.Error("Run %s aborted: %v", summary.RunID, err)
	e.export(context.Background(), summary)
	return summary, err
}

// export hands the summary to the metrics exporter. Failures are logged and
// never change the run outcome.
func (e *SyncEngine) export(ctx context.Context, summary *domain.RunSummary) {
	if e.metrics == nil {
		return
	}
	if err := e.metrics.Export(ctx, summary); err != nil {
		logger.Warn("Metrics export for run %s failed: %v", summary.RunID, err)
	}
}

// syncPartition processes a single partition. Only store and cancellation
// errors are returned; fetch failures are recorded in the summary.
func (e *SyncEngine) syncPartition(
	ctx context.Context,
	p domain.Partition,
	runID string,
	opts driving.RunOptions,
	sample *sampler,
) (domain.PartitionSummary, error) {
	ps := domain.PartitionSummary{Code: p.Code, Status: domain.PartitionOK}
	logger.Section("Partition " + p.Code)

	// Fetch the partition; a failure is recorded and does not stop the run.
	raw, err := e.connector.Fetch(ctx, p)
	if err != nil {
		ps.Err = err
		if ctx.Err() != nil {
			ps.Status = domain.PartitionCanceled
			return ps, nil
		}
		ps.Status = domain.PartitionFailed
		logger.Warn("Partition %s abandoned: %v", p.Code, err)
		return ps, nil
	}
	ps.Fetched = len(raw)

	// Normalise and collapse by ID; the later record wins.
	byID := make(map[string]domain.Course, len(raw))
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		c, err := e.normaliser.Normalise(p, r)
		if err != nil {
			ps.Rejected++
			logger.Debug("Rejected %s/%d: %v", r.Type, r.ID, err)
			continue
		}
		ps.Accepted++
		if _, dup := byID[c.ID]; dup {
			ps.Collapsed++
		} else {
			ids = append(ids, c.ID)
		}
		byID[c.ID] = *c
	}
	logger.Debug("Partition %s: %d fetched, %d accepted, %d rejected", p.Code, ps.Fetched, ps.Accepted, ps.Rejected)

	// Compare in read batches, commit in write batches.
	now := e.now().UTC()
	var pending []domain.WriteOp
	for _, chunk := range chunks(ids, domain.MaxReadBatch) {
		existing, err := e.store.GetBatch(ctx, chunk)
		if err != nil {
			return e.partitionAbort(ctx, ps, storeError("get", err))
		}

		for _, id := range chunk {
			c := byID[id]
			prev, found := existing[id]
			if found && opts.SkipUnchanged && prev.Fingerprint == c.Fingerprint {
				if prev.LastSeenRunID == runID && !prev.Stale {
					ps.Unchanged++
					continue
				}
				pending = append(pending, domain.TouchOp(id, runID))
				ps.Touched++
				continue
			}

			c.UpdatedAt = now
			c.MarkActive(runID)
			pending = append(pending, domain.SetOp(c))
			ps.Written++
			if opts.Preview {
				sample.add(c)
			}
		}
		if opts.Preview {
			sample.see(chunk)
			pending = pending[:0]
			continue
		}
		for len(pending) >= domain.MaxCommitBatch {
			if err := e.store.CommitBatch(ctx, pending[:domain.MaxCommitBatch]); err != nil {
				return e.partitionAbort(ctx, ps, storeError("commit", err))
			}
			pending = pending[domain.MaxCommitBatch:]
		}
	}

	if !opts.Preview && len(pending) > 0 {
		if err := e.store.CommitBatch(ctx, pending); err != nil {
			return e.partitionAbort(ctx, ps, storeError("commit", err))
		}
	}

	logger.Info("Partition %s: written=%d touched=%d unchanged=%d collapsed=%d",
		p.Code, ps.Written, ps.Touched, ps.Unchanged, ps.Collapsed)
	return ps, nil
}

func (e *SyncEngine) partitionAbort(ctx context.Context, ps domain.PartitionSummary, err error) (domain.PartitionSummary, error) {
	ps.Err = err
	ps.Status = domain.PartitionAborted
	if ctx.Err() != nil {
		ps.Status = domain.PartitionCanceled
	}
	return ps, fmt.Errorf("partition %s: %w", ps.Code, err)
}

// storeError ensures err is classified as a *domain.StoreError.
func storeError(op string, err error) error {
	var se *domain.StoreError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StoreError{Op: op, Err: err}
}

// chunks splits ids into consecutive slices of at most size elements.
func chunks(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// sampler keeps the first n would-be documents of a preview run and the
// IDs the run confirmed present.
type sampler struct {
	mu    sync.Mutex
	limit int
	items []domain.Course
	seen  map[string]struct{}
}

func newSampler(limit int) *sampler {
	return &sampler{limit: limit, seen: make(map[string]struct{})}
}

func (s *sampler) see(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.seen[id] = struct{}{}
	}
}

func (s *sampler) seenIDs() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

func (s *sampler) add(c domain.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) < s.limit {
		s.items = append(s.items, c)
	}
}

func (s *sampler) courses() []domain.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}
