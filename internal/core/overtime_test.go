package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverTime_BucketBoundary(t *testing.T) {
	ot := NewOverTime(10)

	// a timestamp exactly on a 600s boundary belongs to the bucket that
	// starts there, not the one before it.
	ot.Add(1200, TypeA, false, false, true)
	idxBoundary := ot.indexFor(1200)
	idxPrev := ot.indexFor(1199)
	assert.NotEqual(t, idxPrev, idxBoundary)
	assert.Equal(t, int64(1), ot.buckets[idxBoundary].Total)
	assert.Equal(t, int64(0), ot.buckets[idxPrev].Total)
}

func TestOverTime_AddAndAdjust(t *testing.T) {
	ot := NewOverTime(10)
	ot.Add(0, TypeA, true, false, false)
	ot.Add(5, TypeAAAA, false, true, false)

	assert.Equal(t, int64(2), ot.SumTotal())
	assert.Equal(t, int64(1), ot.SumBlocked())

	ot.AdjustBlocked(0, -1)
	assert.Equal(t, int64(0), ot.SumBlocked())
}

func TestOverTime_ShiftDropsOldBuckets(t *testing.T) {
	ot := NewOverTime(3)
	ot.Add(0, TypeA, true, false, false)
	ot.Add(600, TypeA, true, false, false)
	ot.Add(1200, TypeA, true, false, false)
	assert.Equal(t, int64(3), ot.SumBlocked())

	ot.Shift(1200)
	// the bucket at t=0 and t=600 should have aged out; only t=1200 remains
	assert.Equal(t, int64(1), ot.SumBlocked())
}
