package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_AppendAssignsMonotonicIDs(t *testing.T) {
	r := NewRing(4)
	for i := 0; i < 4; i++ {
		id := r.Append(Record{Timestamp: float64(i)})
		assert.Equal(t, int64(i), id)
	}
	assert.Equal(t, int64(4), r.Len())
	assert.Equal(t, int64(4), r.LiveCount())
}

func TestRing_LiveRangeBoundary(t *testing.T) {
	r := NewRing(4)
	for i := 0; i < 10; i++ {
		r.Append(Record{Timestamp: float64(i)})
	}

	// only the last 4 ids (6,7,8,9) are live
	assert.Nil(t, r.Get(5))
	require.NotNil(t, r.Get(6))
	assert.Equal(t, float64(6), r.Get(6).Timestamp)
	require.NotNil(t, r.Get(9))
	assert.Equal(t, float64(9), r.Get(9).Timestamp)
	assert.Nil(t, r.Get(10))
	assert.Nil(t, r.Get(-1))

	assert.Equal(t, int64(6), r.OldestLiveID())
	assert.Equal(t, int64(4), r.LiveCount())
}

func TestRing_Compact(t *testing.T) {
	r := NewRing(4)
	for i := 0; i < 10; i++ {
		r.Append(Record{Timestamp: float64(i)})
	}
	// live ids are 6..9; remove the oldest 2 (6,7)
	r.Compact(2)

	assert.Equal(t, int64(8), r.OldestLiveID())
	assert.Equal(t, int64(2), r.LiveCount())
	assert.Nil(t, r.Get(6))
	assert.Nil(t, r.Get(7))
	require.NotNil(t, r.Get(8))
	assert.Equal(t, float64(8), r.Get(8).Timestamp)
	require.NotNil(t, r.Get(9))
	assert.Equal(t, float64(9), r.Get(9).Timestamp)
}

func TestRing_CompactAllLive(t *testing.T) {
	r := NewRing(64)
	for i := 0; i < 10; i++ {
		r.Append(Record{Timestamp: float64(i)})
	}
	require.Equal(t, int64(10), r.LiveCount())

	r.Compact(10)

	assert.Equal(t, int64(0), r.LiveCount())
	assert.Nil(t, r.Get(9))
}
