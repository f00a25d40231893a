package gc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaydns/sentinel/internal/core"
	"github.com/relaydns/sentinel/internal/store"
)

func newTestCollector(t *testing.T) (*Collector, *core.Core) {
	t.Helper()
	c := core.NewCore(core.Config{RingCapacity: 64, OvertimeBuckets: 20})
	s, err := store.Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	gcCollector := New(c, s, Config{GCInterval: 10 * time.Minute, MaxHistory: time.Hour}, nil)
	return gcCollector, c
}

func TestRunGC_EvictsQueriesPastMintime(t *testing.T) {
	gcCollector, c := newTestCollector(t)

	for i := 0; i < 10; i++ {
		c.RecordQuery(core.NewQueryParams{
			Timestamp: float64(i) * 100,
			Type:      core.TypeA,
			Domain:    "example.com",
			ClientIP:  "10.0.0.1",
		})
	}
	assert.Equal(t, int64(10), c.Ring.LiveCount())

	now := time.Unix(1_000_000_000, 0)
	gcCollector.runGC(context.Background(), now)

	stats := c.Stats()
	// every query is far older than maxHistory relative to `now`, so all
	// should have been evicted and the counters must stay consistent.
	assert.Equal(t, int64(0), c.Ring.LiveCount())
	assert.Equal(t, int64(0), stats.TotalQueries)
	assert.Equal(t, int64(0), stats.Counters.Status[core.StatusUnknown])
}

func TestAlignDown(t *testing.T) {
	assert.Equal(t, int64(600), alignDown(650, 600))
	assert.Equal(t, int64(600), alignDown(600, 600))
	assert.Equal(t, int64(0), alignDown(599, 600))
}
