package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeStatus_CountersMoveTogether(t *testing.T) {
	var counters Counters
	domains := NewDomainTable()
	clients := NewClientTable()
	overtime := NewOverTime(10)

	domainID := Handle(1)
	clientID := Handle(2)
	domains.GetOrCreate(domainID)
	clients.GetOrCreate(clientID, 0, 10)

	rec := &Record{Status: StatusUnknown, DomainID: domainID, ClientID: clientID, Timestamp: 0}
	counters.AdmitCounters(TypeA)
	require.Equal(t, int64(1), counters.Status[StatusUnknown])

	ChangeStatus(&counters, domains, clients, overtime, rec, StatusForwarded)
	assert.Equal(t, int64(0), counters.Status[StatusUnknown])
	assert.Equal(t, int64(1), counters.Status[StatusForwarded])
	assert.Equal(t, StatusForwarded, rec.Status)
}

func TestChangeStatus_BlockedSetAdjustsAggregates(t *testing.T) {
	var counters Counters
	domains := NewDomainTable()
	clients := NewClientTable()
	overtime := NewOverTime(10)

	domainID := Handle(1)
	clientID := Handle(2)
	d, _ := domains.GetOrCreate(domainID)
	c, _ := clients.GetOrCreate(clientID, 0, 10)

	rec := &Record{Status: StatusUnknown, DomainID: domainID, ClientID: clientID, Timestamp: 0}
	counters.AdmitCounters(TypeA)

	ChangeStatus(&counters, domains, clients, overtime, rec, StatusGravity)
	assert.True(t, IsBlocked(rec.Status))
	assert.Equal(t, int64(1), d.BlockedCount)
	assert.Equal(t, int64(1), c.BlockedCount)
	assert.Equal(t, int64(1), overtime.SumBlocked())

	// moving from one blocked status to another blocked status must not
	// double-count the blocked aggregates.
	ChangeStatus(&counters, domains, clients, overtime, rec, StatusDenylist)
	assert.Equal(t, int64(1), d.BlockedCount)
	assert.Equal(t, int64(1), c.BlockedCount)
	assert.Equal(t, int64(1), overtime.SumBlocked())

	// leaving the blocked set must undo the adjustment exactly once.
	ChangeStatus(&counters, domains, clients, overtime, rec, StatusForwarded)
	assert.Equal(t, int64(0), d.BlockedCount)
	assert.Equal(t, int64(0), c.BlockedCount)
	assert.Equal(t, int64(0), overtime.SumBlocked())
}

func TestChangeStatus_SameStatusIsNoOp(t *testing.T) {
	var counters Counters
	domains := NewDomainTable()
	clients := NewClientTable()
	overtime := NewOverTime(10)

	rec := &Record{Status: StatusForwarded}
	counters.Status[StatusForwarded] = 1

	ChangeStatus(&counters, domains, clients, overtime, rec, StatusForwarded)
	assert.Equal(t, int64(1), counters.Status[StatusForwarded])
}

func TestCounters_SetReplyReplacesPriorTally(t *testing.T) {
	var counters Counters
	rec := &Record{}

	counters.SetReply(rec, ReplyIP)
	assert.Equal(t, int64(1), counters.Reply[ReplyIP])
	assert.True(t, rec.Flags.Complete)

	counters.SetReply(rec, ReplyNXDomain)
	assert.Equal(t, int64(0), counters.Reply[ReplyIP])
	assert.Equal(t, int64(1), counters.Reply[ReplyNXDomain])
}

func TestChangeStatus_CachedAndForwardedAdjustOvertime(t *testing.T) {
	var counters Counters
	domains := NewDomainTable()
	clients := NewClientTable()
	overtime := NewOverTime(10)

	rec := &Record{Status: StatusUnknown, Timestamp: 0}
	counters.AdmitCounters(TypeA)

	// A fresh ring anchors the first timestamp it sees in its newest (last)
	// bucket, so timestamp 0 lands at index 9 of a 10-bucket ring.
	ChangeStatus(&counters, domains, clients, overtime, rec, StatusForwarded)
	assert.Equal(t, int64(1), overtime.Snapshot()[9].Forwarded)
	assert.Equal(t, int64(0), overtime.Snapshot()[9].Cached)

	// a retry still counts as forwarded, so no double count and no undo.
	ChangeStatus(&counters, domains, clients, overtime, rec, StatusRetried)
	assert.Equal(t, int64(1), overtime.Snapshot()[9].Forwarded)

	ChangeStatus(&counters, domains, clients, overtime, rec, StatusCache)
	assert.Equal(t, int64(0), overtime.Snapshot()[9].Forwarded)
	assert.Equal(t, int64(1), overtime.Snapshot()[9].Cached)
}

func TestAdmitCounters_SeedsReplyUnknown(t *testing.T) {
	var counters Counters
	counters.AdmitCounters(TypeA)
	assert.Equal(t, int64(1), counters.Reply[ReplyUnknown])

	rec := &Record{ReplyType: ReplyUnknown}
	counters.RetireCounters(rec)
	assert.Equal(t, int64(0), counters.Reply[ReplyUnknown], "a query torn down before replying must not leave Reply[ReplyUnknown] negative")
}
