package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

const courseColumns = `id, osm_id, name, name_lower, name_norm, aliases, city, state, country,
	lat, lng, holes, website, name_tokens, name_ngrams, name_tokens_norm, name_ngrams_norm,
	source, updated_at, osm_fingerprint, stale, stale_at, last_seen_run_id`

const upsertCourse = `
	INSERT INTO courses (` + courseColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		osm_id = excluded.osm_id,
		name = excluded.name,
		name_lower = excluded.name_lower,
		name_norm = excluded.name_norm,
		aliases = excluded.aliases,
		city = excluded.city,
		state = excluded.state,
		country = excluded.country,
		lat = excluded.lat,
		lng = excluded.lng,
		holes = excluded.holes,
		website = excluded.website,
		name_tokens = excluded.name_tokens,
		name_ngrams = excluded.name_ngrams,
		name_tokens_norm = excluded.name_tokens_norm,
		name_ngrams_norm = excluded.name_ngrams_norm,
		source = excluded.source,
		updated_at = excluded.updated_at,
		osm_fingerprint = excluded.osm_fingerprint,
		stale = excluded.stale,
		stale_at = excluded.stale_at,
		last_seen_run_id = excluded.last_seen_run_id
`

// GetBatch returns the stored courses for ids.
func (s *Store) GetBatch(ctx context.Context, ids []string) (map[string]domain.Course, error) {
	result := make(map[string]domain.Course, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	if len(ids) > domain.StoreBatchCeiling {
		return nil, &domain.StoreError{Op: "get", Err: fmt.Errorf("%d ids exceeds batch limit %d", len(ids), domain.StoreBatchCeiling)}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE id IN ("+placeholders(len(ids))+")",
		stringArgs(ids)...)
	if err != nil {
		return nil, &domain.StoreError{Op: "get", Err: fmt.Errorf("querying courses: %w", err)}
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, &domain.StoreError{Op: "get", Err: err}
		}
		result[c.ID] = *c
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "get", Err: fmt.Errorf("iterating courses: %w", err)}
	}
	return result, nil
}

// CommitBatch applies ops in a single transaction. Touch and mark-stale
// operations on missing documents roll back the whole batch.
func (s *Store) CommitBatch(ctx context.Context, ops []domain.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > domain.StoreBatchCeiling {
		return &domain.StoreError{Op: "commit", Err: fmt.Errorf("%d operations exceeds batch limit %d", len(ops), domain.StoreBatchCeiling)}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StoreError{Op: "commit", Err: fmt.Errorf("beginning transaction: %w", err)}
	}
	defer tx.Rollback() //nolint:errcheck

	for _, op := range ops {
		if err := applyOp(ctx, tx, op); err != nil {
			return &domain.StoreError{Op: "commit", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StoreError{Op: "commit", Err: fmt.Errorf("committing transaction: %w", err)}
	}
	return nil
}

func applyOp(ctx context.Context, tx *sql.Tx, op domain.WriteOp) error {
	switch op.Kind {
	case domain.OpSet:
		if op.Course == nil {
			return fmt.Errorf("%w: set %s without course", domain.ErrInvalidInput, op.ID)
		}
		args, err := courseArgs(op.ID, op.Course)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertCourse, args...); err != nil {
			return fmt.Errorf("saving course %s: %w", op.ID, err)
		}
		return nil

	case domain.OpTouch:
		return updateOne(ctx, tx, op,
			"UPDATE courses SET last_seen_run_id = ?, stale = 0, stale_at = NULL WHERE id = ?",
			op.RunID, op.ID)

	case domain.OpMarkStale:
		return updateOne(ctx, tx, op,
			"UPDATE courses SET stale = 1, stale_at = ? WHERE id = ?",
			op.At.UnixNano(), op.ID)
	}
	return fmt.Errorf("%w: unknown operation %d", domain.ErrInvalidInput, op.Kind)
}

func updateOne(ctx context.Context, tx *sql.Tx, op domain.WriteOp, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op.Kind, op.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", op.Kind, op.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op.Kind, op.ID, domain.ErrNotFound)
	}
	return nil
}

// Query yields matching courses ordered by ID. The filter is pushed down
// to SQL in full.
func (s *Store) Query(ctx context.Context, filter domain.CourseFilter) iter.Seq2[domain.Course, error] {
	return func(yield func(domain.Course, error) bool) {
		where, args := filterClause(filter)
		rows, err := s.db.QueryContext(ctx, "SELECT "+courseColumns+" FROM courses"+where+" ORDER BY id", args...)
		if err != nil {
			yield(domain.Course{}, &domain.StoreError{Op: "query", Err: fmt.Errorf("querying courses: %w", err)})
			return
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCourse(rows)
			if err != nil {
				yield(domain.Course{}, &domain.StoreError{Op: "query", Err: err})
				return
			}
			if !yield(*c, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.Course{}, &domain.StoreError{Op: "query", Err: fmt.Errorf("iterating courses: %w", err)})
		}
	}
}

// DeleteBatch removes the courses with the given ids in one transaction.
func (s *Store) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > domain.StoreBatchCeiling {
		return &domain.StoreError{Op: "delete", Err: fmt.Errorf("%d ids exceeds batch limit %d", len(ids), domain.StoreBatchCeiling)}
	}

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM courses WHERE id IN ("+placeholders(len(ids))+")",
		stringArgs(ids)...)
	if err != nil {
		return &domain.StoreError{Op: "delete", Err: fmt.Errorf("deleting courses: %w", err)}
	}
	return nil
}

// filterClause translates a filter into a WHERE clause and its arguments.
func filterClause(f domain.CourseFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Country != "" {
		conds = append(conds, "country = ?")
		args = append(args, f.Country)
	}
	if f.State != "" {
		conds = append(conds, "state = ?")
		args = append(args, f.State)
	}
	if f.Stale != nil {
		conds = append(conds, "stale = ?")
		args = append(args, boolToInt(*f.Stale))
	}
	if f.NotSeenInRun != "" {
		conds = append(conds, "last_seen_run_id != ?")
		args = append(args, f.NotSeenInRun)
	}
	if f.StaleAtOrBefore != nil {
		conds = append(conds, "stale_at IS NOT NULL AND stale_at <= ?")
		args = append(args, f.StaleAtOrBefore.UnixNano())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// courseArgs returns the column values for upsertCourse.
func courseArgs(id string, c *domain.Course) ([]any, error) {
	lists := [][]string{c.Aliases, c.NameTokens, c.NameNgrams, c.NameTokensNorm, c.NameNgramsNorm}
	encoded := make([]string, len(lists))
	for i, l := range lists {
		b, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("marshalling course %s: %w", id, err)
		}
		encoded[i] = string(b)
	}

	var holes sql.NullInt64
	if c.Holes != nil {
		holes = sql.NullInt64{Int64: int64(*c.Holes), Valid: true}
	}
	var staleAt sql.NullInt64
	if c.Stale && c.StaleAt != nil {
		staleAt = sql.NullInt64{Int64: c.StaleAt.UnixNano(), Valid: true}
	}

	return []any{
		id, c.OSMID, c.Name, c.NameLower, c.NameNorm, encoded[0], c.City, c.State, c.Country,
		c.Lat, c.Lng, holes, c.Website, encoded[1], encoded[2], encoded[3], encoded[4],
		c.Source, c.UpdatedAt.UnixNano(), c.Fingerprint, boolToInt(staleAt.Valid), staleAt, c.LastSeenRunID,
	}, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (*domain.Course, error) {
	var (
		c         domain.Course
		lists     [5]string
		holes     sql.NullInt64
		updatedAt int64
		stale     int
		staleAt   sql.NullInt64
	)

	err := row.Scan(&c.ID, &c.OSMID, &c.Name, &c.NameLower, &c.NameNorm, &lists[0], &c.City, &c.State, &c.Country,
		&c.Lat, &c.Lng, &holes, &c.Website, &lists[1], &lists[2], &lists[3], &lists[4],
		&c.Source, &updatedAt, &c.Fingerprint, &stale, &staleAt, &c.LastSeenRunID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning course: %w", err)
	}

	targets := []*[]string{&c.Aliases, &c.NameTokens, &c.NameNgrams, &c.NameTokensNorm, &c.NameNgramsNorm}
	for i, raw := range lists {
		if raw == "" || raw == jsonNull {
			continue
		}
		if err := json.Unmarshal([]byte(raw), targets[i]); err != nil {
			return nil, fmt.Errorf("unmarshalling course %s: %w", c.ID, err)
		}
	}

	if holes.Valid {
		h := int(holes.Int64)
		c.Holes = &h
	}
	if updatedAt != 0 {
		c.UpdatedAt = time.Unix(0, updatedAt).UTC()
	}
	if stale != 0 && staleAt.Valid {
		t := time.Unix(0, staleAt.Int64).UTC()
		c.MarkStale(t)
	}

	return &c, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
