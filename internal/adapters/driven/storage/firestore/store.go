package firestore

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
	"github.com/everydaystudy/golf-db-loader/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is a Firestore-backed course store.
type Store struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

// New connects to Firestore. Extra client options are appended after the
// credentials option, which tests use to point at the emulator.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := firestore.NewClientWithDatabase(ctx, cfg.Project, cfg.database(), clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	logger.Debug("Connected to Firestore project %s database %s collection %s", cfg.Project, cfg.database(), cfg.collection())
	return &Store{
		client:     client,
		collection: client.Collection(cfg.collection()),
	}, nil
}

// GetBatch returns the stored courses for ids.
func (s *Store) GetBatch(ctx context.Context, ids []string) (map[string]domain.Course, error) {
	result := make(map[string]domain.Course, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = s.collection.Doc(id)
	}

	snaps, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, storeError("get", err)
	}

	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		var r record
		if err := snap.DataTo(&r); err != nil {
			return nil, storeError("get", fmt.Errorf("decode %s: %w", snap.Ref.ID, err))
		}
		result[snap.Ref.ID] = r.toCourse(snap.Ref.ID)
	}
	return result, nil
}

// CommitBatch applies ops in one transaction. Full writes merge into the
// existing document. Updates of missing documents fail the transaction.
func (s *Store) CommitBatch(ctx context.Context, ops []domain.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > domain.StoreBatchCeiling {
		return &domain.StoreError{Op: "commit", Err: fmt.Errorf("%d operations exceeds batch limit %d", len(ops), domain.StoreBatchCeiling)}
	}

	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, op := range ops {
			ref := s.collection.Doc(op.ID)
			var err error
			switch op.Kind {
			case domain.OpSet:
				if op.Course == nil {
					return fmt.Errorf("%w: set %s without course", domain.ErrInvalidInput, op.ID)
				}
				err = tx.Set(ref, setFields(*op.Course), firestore.MergeAll)
			case domain.OpTouch:
				err = tx.Update(ref, touchUpdates(op.RunID))
			case domain.OpMarkStale:
				err = tx.Update(ref, markStaleUpdates(op.At))
			default:
				err = fmt.Errorf("%w: unknown operation %d", domain.ErrInvalidInput, op.Kind)
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", op.Kind, op.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return storeError("commit", err)
	}
	return nil
}

// Query lazily yields matching courses. Results are re-checked against the
// full filter, which covers the predicates not pushed down.
func (s *Store) Query(ctx context.Context, filter domain.CourseFilter) iter.Seq2[domain.Course, error] {
	return func(yield func(domain.Course, error) bool) {
		q := s.collection.Query
		for _, c := range pushdown(filter) {
			q = q.Where(c.Path, c.Op, c.Value)
		}

		docs := q.Documents(ctx)
		defer docs.Stop()

		for {
			snap, err := docs.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield(domain.Course{}, storeError("query", err))
				return
			}

			var r record
			if err := snap.DataTo(&r); err != nil {
				yield(domain.Course{}, storeError("query", fmt.Errorf("decode %s: %w", snap.Ref.ID, err)))
				return
			}
			c := r.toCourse(snap.Ref.ID)
			if !filter.Matches(c) {
				continue
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// DeleteBatch removes the courses with the given ids in one transaction.
// Missing documents are ignored.
func (s *Store) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > domain.StoreBatchCeiling {
		return &domain.StoreError{Op: "delete", Err: fmt.Errorf("%d ids exceeds batch limit %d", len(ids), domain.StoreBatchCeiling)}
	}

	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, id := range ids {
			if err := tx.Delete(s.collection.Doc(id)); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return storeError("delete", err)
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}
