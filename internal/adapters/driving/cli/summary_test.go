package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

func sampleSummary() *domain.RunSummary {
	return &domain.RunSummary{
		RunID:   "run-20261019120000-abcdef12",
		Preview: true,
		Status:  domain.RunDegraded,
		Partitions: []domain.PartitionSummary{
			{Code: "CA", Status: domain.PartitionOK, Fetched: 10, Accepted: 9, Rejected: 1, Collapsed: 1, Written: 3, Touched: 4, Unchanged: 1},
			{Code: "NV", Status: domain.PartitionFailed, Err: errors.New("overpass: gateway timeout")},
		},
		Marked: 2,
		Purged: 1,
	}
}

func TestWriteSummary_Plain(t *testing.T) {
	var buf bytes.Buffer

	writeSummary(&buf, sampleSummary(), false)

	assert.Equal(t,
		"partition=CA status=ok fetched=10 accepted=9 rejected=1 collapsed=1 written=3 touched=4 unchanged=1\n"+
			"partition=NV status=failed fetched=0 accepted=0 rejected=0 collapsed=0 written=0 touched=0 unchanged=0 error=\"overpass: gateway timeout\"\n"+
			"run=run-20261019120000-abcdef12 status=degraded preview=true marked=2 purged=1\n",
		buf.String())
}

func TestWriteSummary_Styled(t *testing.T) {
	var buf bytes.Buffer

	writeSummary(&buf, sampleSummary(), true)

	out := buf.String()
	assert.Contains(t, out, "Run run-20261019120000-abcdef12 (dry run)")
	for _, h := range summaryHeaders {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "marked stale 2, purged 1")
	assert.Contains(t, out, "NV: overpass: gateway timeout")
}

func TestWriteSample(t *testing.T) {
	holes := 9
	staleAt := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer

	err := writeSample(&buf, []domain.Course{
		{ID: "a", Name: "A", Holes: &holes},
		{ID: "b", Name: "B", Stale: true, StaleAt: &staleAt, Website: "https://b.example"},
	})

	require.NoError(t, err)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 2)
	assert.InDelta(t, 9, docs[0]["holes"], 0)
	assert.NotContains(t, docs[0], "website")
	assert.Nil(t, docs[0]["stale_at"])
	assert.Equal(t, "2026-10-01T00:00:00Z", docs[1]["stale_at"])
	assert.Equal(t, true, docs[1]["stale"])
	assert.Nil(t, docs[1]["holes"])
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}
