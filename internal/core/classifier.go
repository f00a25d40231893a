package core

// Counters holds the overview tallies whose invariants §8 tests against:
// sum(Status) == Queries and sum(QueryType) == Queries.
type Counters struct {
	Queries   int64
	Status    [StatusCount]int64
	QueryType [TypeCount]int64
	Reply     [ReplyCount]int64
}

// ChangeStatus is the single entry point that owns every counter mutation
// tied to a status change, per design note §9 ("a change_status(q, new)
// single entry point that owns counter deltas; no other code touches
// counters"). It implements §4.3's three steps:
//  1. decrement counters.status[old], increment counters.status[new]
//  2. if the transition crosses the blocked-set boundary, adjust the
//     owning domain/client/overtime-bucket blocked counters
//  3. never move across IN_PROGRESS without the explicit in-progress tag
//     (enforced by callers passing the right Status; this function applies
//     whatever transition it is given)
func ChangeStatus(counters *Counters, domains *DomainTable, clients *ClientTable, overtime *OverTime, rec *Record, newStatus Status) {
	old := rec.Status
	if old == newStatus {
		return
	}

	counters.Status[old]--
	counters.Status[newStatus]++

	wasBlocked := IsBlocked(old)
	isBlocked := IsBlocked(newStatus)
	if wasBlocked != isBlocked {
		delta := int64(1)
		if wasBlocked {
			delta = -1
		}
		overtime.AdjustBlocked(rec.Timestamp, delta)
		if d := domains.Get(rec.DomainID); d != nil {
			d.BlockedCount += delta
		}
		if c := clients.Get(rec.ClientID); c != nil {
			c.BlockedCount += delta
		}
	}

	wasCached := IsCached(old)
	isCached := IsCached(newStatus)
	if wasCached != isCached {
		delta := int64(1)
		if wasCached {
			delta = -1
		}
		overtime.AdjustCached(rec.Timestamp, delta)
	}

	wasForwarded := IsForwarded(old)
	isForwarded := IsForwarded(newStatus)
	if wasForwarded != isForwarded {
		delta := int64(1)
		if wasForwarded {
			delta = -1
		}
		overtime.AdjustForwarded(rec.Timestamp, delta)
	}

	rec.Status = newStatus
}

// AdmitCounters rolls a freshly-appended query into the overview counters:
// increments Queries, the initial status tally (StatusUnknown), and the
// type tally. Called once per Ring.Append, before any ChangeStatus call.
func (c *Counters) AdmitCounters(qt QueryType) {
	c.Queries++
	c.Status[StatusUnknown]++
	c.QueryType[qt]++
	c.Reply[ReplyUnknown]++
}

// RetireCounters undoes AdmitCounters plus whatever status/reply tallies
// the query had accrued by the time it is torn down by GC. The caller is
// expected to have already reset rec.Status to StatusUnknown via
// ChangeStatus (so the blocked-set side effects already ran); this unwinds
// the queries, type, reply and status tallies, per §4.6's runGC teardown.
func (c *Counters) RetireCounters(rec *Record) {
	c.Queries--
	c.QueryType[rec.Type]--
	c.Reply[rec.ReplyType]--
	if rec.Status != StatusUnknown {
		c.Status[rec.Status]--
	} else {
		c.Status[StatusUnknown]--
	}
}

// SetReply records the reply type for a completed query, adjusting the
// reply counter and marking the query complete. A repeated call moves the
// tally from the previous reply type to the new one.
func (c *Counters) SetReply(rec *Record, reply ReplyType) {
	// rec.ReplyType is always counted somewhere: AdmitCounters seeded
	// Reply[ReplyUnknown] at creation, and every subsequent SetReply call
	// left its own tally behind. Always unwind it before recounting.
	c.Reply[rec.ReplyType]--
	rec.ReplyType = reply
	c.Reply[reply]++
	rec.Flags.Complete = true
}
