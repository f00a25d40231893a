package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_CreateAndAuthenticate(t *testing.T) {
	tbl := NewTable(4, time.Minute)
	now := time.Unix(1000, 0)

	idx, s, err := tbl.Create(now, "10.0.0.1", "curl", false, false)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Len(t, s.SID, 43)
	assert.Len(t, s.CSRF, 43)
	assert.NotEqual(t, s.SID, s.CSRF)

	gotIdx, got, ok := tbl.Authenticate(now.Add(30*time.Second), s.SID, "10.0.0.1", false)
	require.True(t, ok)
	assert.Equal(t, idx, gotIdx)
	assert.Equal(t, now.Add(30*time.Second).Add(time.Minute), got.ValidUntil)
}

func TestTable_Authenticate_WrongRemoteAddrFails(t *testing.T) {
	tbl := NewTable(4, time.Minute)
	now := time.Unix(1000, 0)
	_, s, err := tbl.Create(now, "10.0.0.1", "curl", false, false)
	require.NoError(t, err)

	_, _, ok := tbl.Authenticate(now, s.SID, "10.0.0.2", false)
	assert.False(t, ok)
}

func TestTable_Authenticate_ExpiredFails(t *testing.T) {
	tbl := NewTable(4, time.Minute)
	now := time.Unix(1000, 0)
	_, s, err := tbl.Create(now, "10.0.0.1", "curl", false, false)
	require.NoError(t, err)

	_, _, ok := tbl.Authenticate(now.Add(2*time.Minute), s.SID, "10.0.0.1", false)
	assert.False(t, ok)
}

func TestTable_Create_ReclaimsExpiredSlot(t *testing.T) {
	tbl := NewTable(1, time.Minute)
	now := time.Unix(1000, 0)
	_, _, err := tbl.Create(now, "10.0.0.1", "curl", false, false)
	require.NoError(t, err)

	_, _, err = tbl.Create(now, "10.0.0.2", "curl", false, false)
	assert.ErrorIs(t, err, ErrNoFreeSlots)

	idx, _, err := tbl.Create(now.Add(2*time.Minute), "10.0.0.2", "curl", false, false)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestTable_RevokeSID_Idempotent(t *testing.T) {
	tbl := NewTable(4, time.Minute)
	now := time.Unix(1000, 0)
	_, s, err := tbl.Create(now, "10.0.0.1", "curl", false, false)
	require.NoError(t, err)

	assert.True(t, tbl.RevokeSID(s.SID))
	assert.False(t, tbl.RevokeSID(s.SID), "revoking twice is not an error but reports nothing found")
}

func TestTable_MixedTLSFlag(t *testing.T) {
	tbl := NewTable(4, time.Minute)
	now := time.Unix(1000, 0)
	_, s, err := tbl.Create(now, "10.0.0.1", "curl", true, false)
	require.NoError(t, err)

	_, got, ok := tbl.Authenticate(now, s.SID, "10.0.0.1", false)
	require.True(t, ok)
	assert.True(t, got.TLS.Mixed)
}
