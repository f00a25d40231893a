package gc

import (
	"context"
	"strconv"
	"time"

	"github.com/relaydns/sentinel/internal/core"
)

// runGC implements §4.6 step 4: age out every query at or before mintime,
// decrementing the aggregates it contributed to, then compact the ring and
// shift the overtime window past mintime. mintime is aligned to the GC
// interval boundary so repeated runs agree on exactly which queries are in
// scope. Every record evicted this way is also the unit of work for the
// coarser disk-tier flush in §4.5: once a query has aged out of the ring it
// will never be touched again, so this is the last chance to mirror it into
// the long-term database.
func (gc *Collector) runGC(ctx context.Context, now time.Time) {
	maxHistorySeconds := int64(gc.cfg.MaxHistory.Seconds())
	interval := int64(gc.cfg.GCInterval.Seconds())
	if interval <= 0 {
		interval = 600
	}
	mintime := alignDown(now.Unix()-maxHistorySeconds, interval)

	var removed int64
	var evicted []core.Record
	gc.core.Update(func(c *core.Core) {
		oldest := c.Ring.OldestLiveID()
		live := c.Ring.LiveCount()
		for i := int64(0); i < live; i++ {
			id := oldest + i
			rec := c.Ring.Get(id)
			if rec == nil || float64(mintime) < rec.Timestamp {
				break
			}

			// Snapshot the record as last observed before counter teardown
			// rewrites its status, so the disk mirror records what the
			// query actually resolved to, not the neutral state GC resets
			// it to for bookkeeping purposes.
			evicted = append(evicted, *rec)

			// Tear down this query's contribution to every aggregate it
			// touched, counter-neutrally: first undo any blocked-set
			// membership via the classifier's own entry point, then unwind
			// the type/reply/queries tallies it is still holding.
			core.ChangeStatus(&c.Counters, c.Domains, c.Clients, c.Overtime, rec, core.StatusUnknown)
			c.Counters.RetireCounters(rec)
			c.Overtime.AdjustTotal(rec.Timestamp, -1)
			if d := c.Domains.Get(rec.DomainID); d != nil {
				d.Count--
			}
			if cl := c.Clients.Get(rec.ClientID); cl != nil {
				cl.Count--
			}
			removed++
		}
		if removed > 0 {
			c.Ring.Compact(removed)
		}
		c.Overtime.Shift(mintime)
	})

	if removed > 0 {
		gc.logger.Info("garbage collection complete", "removed", removed, "mintime", mintime)
		_ = gc.store.LogMessage(ctx, "gc", "garbage collection complete", strconv.FormatInt(removed, 10))
	}

	gc.flushDisk(ctx, evicted)
}

// alignDown rounds t down to the nearest multiple of interval, matching
// §4.6's align(now - maxHistory, GCinterval).
func alignDown(t, interval int64) int64 {
	if interval <= 0 {
		return t
	}
	return (t / interval) * interval
}
