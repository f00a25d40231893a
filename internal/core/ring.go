package core

// Record is a single query record, see §3 "Query record".
type Record struct {
	ID             int64
	Timestamp      float64
	Type           QueryType
	Status         Status
	ReplyType      ReplyType
	ReplyTimeMs    float64
	DNSSECStatus   DNSSECStatus
	TTL            int32
	DomainID       Handle
	ClientID       Handle
	UpstreamID     Handle // NoHandle if absent
	RegexID        int32  // -1 if absent
	ClientNameID   Handle // NoHandle if absent
	AdditionalInfo []byte // nullable
	Flags          RecordFlags
}

// RecordFlags is the query record's bitset field, see §3.
type RecordFlags struct {
	Complete        bool
	InProgress      bool
	RateLimited     bool
	CNAMEDeepInspect bool

	// Dirty marks a record touched since the last SQL-mirror flush. Set on
	// admission and by every Core mutator, cleared by Core.Dirty once the
	// flusher has read it, per §4.5.
	Dirty bool
}

// Ring is a bounded array of query records, oldest-first, indexed by
// monotonic query id, per §4.2.
type Ring struct {
	records  []Record
	capacity int
	queries  int64 // monotonically increasing; records live at id % capacity
	evicted  int64 // ids below this have been retired by GC, ahead of capacity wraparound
}

// NewRing creates a ring with the given fixed capacity.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		records:  make([]Record, capacity),
		capacity: capacity,
	}
}

// Capacity returns the ring's fixed capacity.
func (r *Ring) Capacity() int { return r.capacity }

// Len returns the number of queries ever admitted (monotonic, not bounded
// by capacity).
func (r *Ring) Len() int64 { return r.queries }

// LiveCount returns the number of queries currently resident in memory.
func (r *Ring) LiveCount() int64 {
	return r.queries - r.OldestLiveID()
}

// Append admits a new record, assigning it the next monotonic id. The
// caller must already hold the Core mutex; id assignment under that lock is
// what makes ids strictly monotonic per §5.
func (r *Ring) Append(rec Record) int64 {
	id := r.queries
	rec.ID = id
	r.records[id%int64(r.capacity)] = rec
	r.queries++
	return id
}

// Get returns a pointer to the live record for id, or nil if id falls
// outside the live range [OldestLiveID(), queries).
func (r *Ring) Get(id int64) *Record {
	if id < 0 || id >= r.queries {
		return nil
	}
	if id < r.OldestLiveID() {
		return nil
	}
	return &r.records[id%int64(r.capacity)]
}

// OldestLiveID returns the smallest id currently resident in memory: the
// later of the capacity-derived wraparound floor and GC's own evicted
// cursor, per the FTL model of keeping array position (id % capacity)
// separate from how far GC has retired the window.
func (r *Ring) OldestLiveID() int64 {
	floor := r.queries - int64(r.capacity)
	if floor < 0 {
		floor = 0
	}
	if r.evicted > floor {
		return r.evicted
	}
	return floor
}

// Compact retires the oldest `removed` live queries from the ring, per
// §4.6. It only advances the evicted cursor — physical slots are left in
// place and naturally get overwritten once Append wraps back to them, so
// addressing stays pure id % capacity throughout.
func (r *Ring) Compact(removed int64) {
	if removed <= 0 {
		return
	}
	r.evicted = r.OldestLiveID() + removed
	if r.evicted > r.queries {
		r.evicted = r.queries
	}
}
