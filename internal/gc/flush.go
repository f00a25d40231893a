package gc

import (
	"context"
	"database/sql"

	"github.com/relaydns/sentinel/internal/core"
	"github.com/relaydns/sentinel/internal/pool"
	"github.com/relaydns/sentinel/internal/store"
)

// insertBatchPool reuses the per-tick scratch slice that holds resolved
// inserts, mirroring the teacher's pool.New use for its per-packet buffer
// reuse (internal/server/udp_server.go) — here the hot path is a flush tick
// against a potentially large dirty set rather than a packet read.
var insertBatchPool = pool.New(func() *[]store.QueryInsert {
	s := make([]store.QueryInsert, 0, 256)
	return &s
})

// flushMem implements §4.5's fast tier: every DBinterval seconds, drain
// every record touched since the last flush and upsert it into mem.queries.
// A failed flush marks the mirror busy, which routes new admissions to the
// DBBUSY status (core.Core.SetDBBusy) until a later flush succeeds.
func (gc *Collector) flushMem(ctx context.Context) {
	dirty := gc.core.Dirty()
	if len(dirty) == 0 {
		return
	}

	batchPtr := insertBatchPool.Get()
	batch := (*batchPtr)[:0]
	for _, rec := range dirty {
		batch = append(batch, gc.toInsert(rec))
	}

	var failed bool
	for _, ins := range batch {
		if err := gc.store.InsertRecord(ctx, ins); err != nil {
			gc.logger.Warn("mem flush failed", "id", ins.ID, "err", err)
			failed = true
			break
		}
	}
	if failed != gc.core.DBBusy() {
		gc.core.SetDBBusy(failed)
	}

	*batchPtr = batch[:0]
	insertBatchPool.Put(batchPtr)
}

// flushDisk implements §4.5's coarser tier: every record the garbage
// collector evicts from the ring this run is mirrored into the long-term
// on-disk database before it is gone from memory for good. A disk write
// failure is logged but never sets DBbusy — the fast mem tier is the one
// serving live API reads, so only its health gates new admissions.
func (gc *Collector) flushDisk(ctx context.Context, evicted []core.Record) {
	if len(evicted) == 0 || !gc.store.HasDisk() {
		return
	}

	inserts := make([]store.QueryInsert, len(evicted))
	for i, rec := range evicted {
		inserts[i] = gc.toInsert(rec)
	}

	err := gc.store.WithDisk(ctx, func(conn *sql.Conn) error {
		for _, ins := range inserts {
			if err := gc.store.InsertRecordDisk(ctx, conn, ins); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		gc.logger.Warn("disk flush failed", "count", len(inserts), "err", err)
	}
}

// toInsert resolves rec's interned handles and flattens it into the
// string-only shape InsertRecord/InsertRecordDisk accept.
func (gc *Collector) toInsert(rec core.Record) store.QueryInsert {
	domain, client, clientName, upstream := gc.core.Resolve(rec)

	ins := store.QueryInsert{
		ID:         rec.ID,
		Timestamp:  rec.Timestamp,
		Type:       rec.Type.String(),
		Status:     rec.Status.String(),
		Domain:     domain,
		Client:     client,
		ClientName: clientName,
		Upstream:   upstream,
		RegexID:    rec.RegexID,
	}
	if rec.Flags.Complete {
		ins.HasReply = true
		ins.ReplyType = rec.ReplyType.String()
		ins.ReplyTimeMs = rec.ReplyTimeMs
		ins.DNSSEC = rec.DNSSECStatus.String()
		ins.TTL = rec.TTL
	}
	return ins
}
