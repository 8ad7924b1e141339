package firestore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// setupEmulatorStore connects to the Firestore emulator, skipping the test
// when FIRESTORE_EMULATOR_HOST is not set.
func setupEmulatorStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	store, err := New(ctx, Config{
		Project:    "golf-loader-test",
		Collection: fmt.Sprintf("courses_%d", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNew_RequiresProject(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrMissingProject)
}

func TestStore_Emulator_Lifecycle(t *testing.T) {
	store := setupEmulatorStore(t)
	ctx := context.Background()
	c := sampleCourse()

	require.NoError(t, store.CommitBatch(ctx, []domain.WriteOp{domain.SetOp(c)}))

	got, err := store.GetBatch(ctx, []string{c.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.Name, got[c.ID].Name)
	assert.False(t, got[c.ID].UpdatedAt.IsZero())

	// Fields owned by other writers survive a full rewrite.
	_, err = store.collection.Doc(c.ID).Update(ctx, []firestore.Update{{Path: "rating", Value: 4.5}})
	require.NoError(t, err)
	c.Name = "Pebble Beach Golf Links (Resort)"
	require.NoError(t, store.CommitBatch(ctx, []domain.WriteOp{domain.SetOp(c)}))
	snap, err := store.collection.Doc(c.ID).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.5, snap.Data()["rating"])
	assert.Equal(t, c.Name, snap.Data()["name"])
	assert.IsType(t, time.Time{}, snap.Data()["osm_updated_at"])

	at := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CommitBatch(ctx, []domain.WriteOp{domain.MarkStaleOp(c.ID, at)}))

	var stale []string
	cutoff := at.Add(time.Hour)
	for course, err := range store.Query(ctx, domain.CourseFilter{State: "CA", Stale: domain.Bool(true), StaleAtOrBefore: &cutoff}) {
		require.NoError(t, err)
		stale = append(stale, course.ID)
	}
	assert.Equal(t, []string{c.ID}, stale)

	require.NoError(t, store.CommitBatch(ctx, []domain.WriteOp{domain.TouchOp(c.ID, "run-2")}))
	got, err = store.GetBatch(ctx, []string{c.ID})
	require.NoError(t, err)
	assert.False(t, got[c.ID].Stale)
	assert.Nil(t, got[c.ID].StaleAt)

	err = store.CommitBatch(ctx, []domain.WriteOp{domain.TouchOp("missing", "run-2")})
	assert.ErrorIs(t, err, domain.ErrStore)

	require.NoError(t, store.DeleteBatch(ctx, []string{c.ID}))
	got, err = store.GetBatch(ctx, []string{c.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}
