package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainTable_GetOrCreate(t *testing.T) {
	dt := NewDomainTable()

	d1, created := dt.GetOrCreate(Handle(5))
	assert.True(t, created)
	d1.Count = 3

	d2, created := dt.GetOrCreate(Handle(5))
	assert.False(t, created)
	assert.Equal(t, int64(3), d2.Count, "must return the same backing record")

	assert.Nil(t, dt.Get(Handle(9)))
	assert.Equal(t, 1, dt.Len())
}

func TestClientTable_OvertimeSizing(t *testing.T) {
	ct := NewClientTable()
	c, created := ct.GetOrCreate(Handle(1), 100, 12)
	require.True(t, created)
	assert.Equal(t, 12, len(c.Overtime))
	assert.Equal(t, 100.0, c.FirstSeen)
	assert.Equal(t, NoHandle, c.NameID)
	assert.Equal(t, NoHandle, c.AliasParentID)
}

func TestUpstreamTable_GetOrCreate(t *testing.T) {
	ut := NewUpstreamTable()
	u, created := ut.GetOrCreate(Handle(3), 53)
	assert.True(t, created)
	assert.Equal(t, 53, u.Port)

	u2, created := ut.GetOrCreate(Handle(3), 53)
	assert.False(t, created)
	assert.Same(t, u, u2)
}
