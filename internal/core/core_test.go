package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCore() *Core {
	return NewCore(Config{RingCapacity: 16, OvertimeBuckets: 10, RateLimitCount: 2, RateLimitSeconds: 60})
}

func TestCore_RecordQuery_AggregatesUpdate(t *testing.T) {
	c := newTestCore()

	res := c.RecordQuery(NewQueryParams{Timestamp: 0, Type: TypeA, Domain: "example.com", ClientIP: "10.0.0.1"})
	require.Equal(t, int64(0), res.ID)
	assert.Equal(t, RateLimitAllow, res.Verdict)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.TotalQueries)
	assert.Equal(t, 1, stats.UniqueDomains)
	assert.Equal(t, 1, stats.UniqueClients)
}

func TestCore_RecordQuery_TripsRateLimit(t *testing.T) {
	c := newTestCore()
	for i := 0; i < 2; i++ {
		res := c.RecordQuery(NewQueryParams{Timestamp: float64(i), Type: TypeA, Domain: "example.com", ClientIP: "10.0.0.1"})
		assert.Equal(t, RateLimitAllow, res.Verdict)
	}
	res := c.RecordQuery(NewQueryParams{Timestamp: 2, Type: TypeA, Domain: "example.com", ClientIP: "10.0.0.1"})
	assert.Equal(t, RateLimitRefuse, res.Verdict)

	rec := c.Ring.Get(res.ID)
	require.NotNil(t, rec)
	assert.True(t, rec.Flags.RateLimited, "a refused query must still be recorded")
}

func TestCore_SetStatus_UpdatesBlockedSnapshot(t *testing.T) {
	c := newTestCore()
	res := c.RecordQuery(NewQueryParams{Timestamp: 0, Type: TypeA, Domain: "ads.example.com", ClientIP: "10.0.0.2"})

	ok := c.SetStatus(res.ID, StatusGravity)
	require.True(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.BlockedQueries)

	assert.False(t, c.SetStatus(res.ID+1000, StatusGravity), "unknown id must report failure")
}

func TestCore_SetReplyAndUpstream(t *testing.T) {
	c := newTestCore()
	res := c.RecordQuery(NewQueryParams{Timestamp: 0, Type: TypeA, Domain: "example.com", ClientIP: "10.0.0.3"})

	require.True(t, c.SetUpstream(res.ID, "1.1.1.1", 53))
	require.True(t, c.SetReply(res.ID, ReplyIP, 12.5, 300, DNSSECSecure))

	rec := c.Ring.Get(res.ID)
	require.NotNil(t, rec)
	assert.Equal(t, ReplyIP, rec.ReplyType)
	assert.Equal(t, int32(300), rec.TTL)
	assert.Equal(t, DNSSECSecure, rec.DNSSECStatus)
	assert.Equal(t, 1, c.Upstreams.Len())
}
