package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitPolicy_AdmitStickyFlag(t *testing.T) {
	policy := RateLimitPolicy{Count: 2, Interval: 60}
	client := &ClientRecord{}

	require.Equal(t, RateLimitAllow, policy.Admit(client, nil, "10.0.0.1"))
	require.Equal(t, RateLimitAllow, policy.Admit(client, nil, "10.0.0.1"))
	// third query within the window crosses the threshold
	assert.Equal(t, RateLimitRefuse, policy.Admit(client, nil, "10.0.0.1"))
	assert.True(t, client.Flags.RateLimited)

	// once flagged, stays refused even if the count stalls
	assert.Equal(t, RateLimitRefuse, policy.Admit(client, nil, "10.0.0.1"))
}

func TestRateLimitPolicy_Disabled(t *testing.T) {
	policy := RateLimitPolicy{}
	client := &ClientRecord{}
	for i := 0; i < 100; i++ {
		assert.Equal(t, RateLimitAllow, policy.Admit(client, nil, "10.0.0.1"))
	}
	assert.False(t, client.Flags.RateLimited)
}

func TestRateLimitPolicy_ResetWindow(t *testing.T) {
	policy := RateLimitPolicy{Count: 2, Interval: 60}
	in := NewInterner()
	clients := NewClientTable()

	ipID := in.Intern("10.0.0.1")
	c, _ := clients.GetOrCreate(ipID, 0, 1)
	c.Flags.RateLimited = true
	c.RateLimitCount = 5 // still over threshold

	policy.ResetWindow(clients, in, nil)
	assert.True(t, c.Flags.RateLimited, "still over threshold after reset: flag must persist")
	assert.Equal(t, uint32(0), c.RateLimitCount)

	c.Flags.RateLimited = true
	c.RateLimitCount = 1 // now under threshold
	policy.ResetWindow(clients, in, nil)
	assert.False(t, c.Flags.RateLimited, "under threshold after reset: flag must clear")
}

func TestRateLimitPolicy_Turnaround(t *testing.T) {
	policy := RateLimitPolicy{Count: 10, Interval: 60}
	got := policy.Turnaround(25, 5)
	// ceil(25/10) = 3 windows; 3*60 - 5 = 175
	assert.Equal(t, 175.0, got)
}
