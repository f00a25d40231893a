package core

// DomainRecord is a per-domain aggregate, see §3 "Domain record".
type DomainRecord struct {
	NameID       Handle
	Count        int64
	BlockedCount int64
}

// ClientFlags holds the two sticky boolean flags a client record carries.
type ClientFlags struct {
	RateLimited bool
	Aliased     bool
}

// ClientRecord is a per-client aggregate, see §3 "Client record".
type ClientRecord struct {
	IPID           Handle
	NameID         Handle
	MACID          Handle
	FirstSeen      float64
	LastQuery      float64
	Count          int64
	BlockedCount   int64
	Overtime       []int64 // total queries per 10-minute slot, indexed by slots since FirstSeen modulo len; not aligned with or shifted alongside OverTime's ring
	RateLimitCount uint32
	Flags          ClientFlags
	AliasParentID  Handle
}

// UpstreamRecord is a per-upstream aggregate, see §3 "Upstream record".
type UpstreamRecord struct {
	IPID          Handle
	NameID        Handle
	Port          int
	Count         int64
	FailedCount   int64
	RTTUncertainty float64
	RTTSum        float64
}

// DomainTable is an append-only vector of DomainRecord with a handle index,
// per §4.1: "append-only vectors of fixed-size records with a parallel
// open-addressing hash index keyed by (kind, handle_of_key_string)". Go's
// built-in map already gives us O(1) lookup without hand-rolled open
// addressing, so we use one here directly — there is no pack example that
// implements a hash table more cheaply than the standard map for this case.
type DomainTable struct {
	records []DomainRecord
	byName  map[Handle]int
}

// NewDomainTable creates an empty domain table.
func NewDomainTable() *DomainTable {
	return &DomainTable{byName: make(map[Handle]int, 256)}
}

// GetOrCreate returns the record for nameID, creating it (with count 0) on
// first sighting. The second return value is true if a new record was
// created.
func (t *DomainTable) GetOrCreate(nameID Handle) (*DomainRecord, bool) {
	if idx, ok := t.byName[nameID]; ok {
		return &t.records[idx], false
	}
	t.records = append(t.records, DomainRecord{NameID: nameID})
	idx := len(t.records) - 1
	t.byName[nameID] = idx
	return &t.records[idx], true
}

// Get returns the record for nameID, or nil if the domain has never been
// seen.
func (t *DomainTable) Get(nameID Handle) *DomainRecord {
	if idx, ok := t.byName[nameID]; ok {
		return &t.records[idx]
	}
	return nil
}

// Len returns the number of distinct domains tracked.
func (t *DomainTable) Len() int { return len(t.records) }

// All returns every domain record, for suggestion/top-domain queries.
func (t *DomainTable) All() []DomainRecord { return t.records }

// ClientTable is the client analogue of DomainTable, keyed by IP handle.
type ClientTable struct {
	records []ClientRecord
	byIP    map[Handle]int
}

// NewClientTable creates an empty client table.
func NewClientTable() *ClientTable {
	return &ClientTable{byIP: make(map[Handle]int, 256)}
}

// GetOrCreate returns the record for ipID, creating it on first sighting.
// overtimeBuckets sizes the record's own per-client overtime ring to match
// the shared OverTime capacity.
func (t *ClientTable) GetOrCreate(ipID Handle, now float64, overtimeBuckets int) (*ClientRecord, bool) {
	if idx, ok := t.byIP[ipID]; ok {
		return &t.records[idx], false
	}
	t.records = append(t.records, ClientRecord{
		IPID:          ipID,
		NameID:        NoHandle,
		MACID:         NoHandle,
		AliasParentID: NoHandle,
		FirstSeen:     now,
		Overtime:      make([]int64, overtimeBuckets),
	})
	idx := len(t.records) - 1
	t.byIP[ipID] = idx
	return &t.records[idx], true
}

// Get returns the record for ipID, or nil if the client has never been seen.
func (t *ClientTable) Get(ipID Handle) *ClientRecord {
	if idx, ok := t.byIP[ipID]; ok {
		return &t.records[idx]
	}
	return nil
}

// Len returns the number of distinct clients tracked.
func (t *ClientTable) Len() int { return len(t.records) }

// All returns every client record, for suggestion/top-client queries.
func (t *ClientTable) All() []ClientRecord { return t.records }

// UpstreamTable is the upstream analogue of DomainTable, keyed by IP handle.
type UpstreamTable struct {
	records []UpstreamRecord
	byIP    map[Handle]int
}

// NewUpstreamTable creates an empty upstream table.
func NewUpstreamTable() *UpstreamTable {
	return &UpstreamTable{byIP: make(map[Handle]int, 64)}
}

// GetOrCreate returns the record for ipID, creating it on first sighting.
func (t *UpstreamTable) GetOrCreate(ipID Handle, port int) (*UpstreamRecord, bool) {
	if idx, ok := t.byIP[ipID]; ok {
		return &t.records[idx], false
	}
	t.records = append(t.records, UpstreamRecord{IPID: ipID, NameID: NoHandle, Port: port})
	idx := len(t.records) - 1
	t.byIP[ipID] = idx
	return &t.records[idx], true
}

// Get returns the record for ipID, or nil if the upstream has never been
// seen.
func (t *UpstreamTable) Get(ipID Handle) *UpstreamRecord {
	if idx, ok := t.byIP[ipID]; ok {
		return &t.records[idx]
	}
	return nil
}

// Len returns the number of distinct upstreams tracked.
func (t *UpstreamTable) Len() int { return len(t.records) }

// All returns every upstream record, for the /api/stats/upstreams endpoint.
func (t *UpstreamTable) All() []UpstreamRecord { return t.records }
