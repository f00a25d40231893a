package core

import (
	"log/slog"
	"sync"
)

// Core is the single in-memory state value described by the concurrency
// model: every table that used to be a set of global C statics now lives
// here, guarded by one RWMutex. No field is safe to read or write without
// holding mu; the exported methods below are the only sanctioned access
// path, mirroring the "lock order core-mutex -> SQL-mutex" rule (store
// operations that also touch Core always take Core's lock first).
type Core struct {
	mu sync.RWMutex

	Interner  *Interner
	Domains   *DomainTable
	Clients   *ClientTable
	Upstreams *UpstreamTable
	Overtime  *OverTime
	Ring      *Ring
	Counters  Counters
	RateLimit RateLimitPolicy

	overtimeBuckets int
	logger          *slog.Logger
	dbBusy          bool
}

// Config bundles the sizing and policy knobs NewCore needs.
type Config struct {
	RingCapacity     int
	OvertimeBuckets  int
	RateLimitCount   uint32
	RateLimitSeconds uint32
	Logger           *slog.Logger
}

// NewCore builds an empty Core ready to accept queries.
func NewCore(cfg Config) *Core {
	if cfg.OvertimeBuckets < 1 {
		cfg.OvertimeBuckets = 144 // 24h of 10-minute buckets
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Core{
		Interner:  NewInterner(),
		Domains:   NewDomainTable(),
		Clients:   NewClientTable(),
		Upstreams: NewUpstreamTable(),
		Overtime:  NewOverTime(cfg.OvertimeBuckets),
		Ring:      NewRing(cfg.RingCapacity),
		RateLimit: RateLimitPolicy{Count: cfg.RateLimitCount, Interval: cfg.RateLimitSeconds},

		overtimeBuckets: cfg.OvertimeBuckets,
		logger:          cfg.Logger,
	}
}

// NewQueryParams describes a freshly-seen query, before classification.
type NewQueryParams struct {
	Timestamp  float64
	Type       QueryType
	Domain     string
	ClientIP   string
	ClientName string
}

// NewQueryResult is what the caller needs to drive the rest of the query's
// lifecycle (further SetStatus/SetReply/SetUpstream calls) plus the
// admission verdict.
type NewQueryResult struct {
	ID      int64
	Verdict RateLimitVerdict
}

// RecordQuery admits a new query: interns its domain and client, updates
// their aggregate Count/LastQuery fields, runs rate-limit admission, and
// appends a StatusUnknown record to the ring. Per §4.4, a refused query is
// still recorded (with RecordFlags.RateLimited set) so it shows up in the
// query log — the refusal only changes what status the caller classifies
// it as next.
func (c *Core) RecordQuery(p NewQueryParams) NewQueryResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	domainID := c.Interner.Intern(p.Domain)
	clientIPID := c.Interner.Intern(p.ClientIP)

	domain, _ := c.Domains.GetOrCreate(domainID)
	domain.Count++

	client, created := c.Clients.GetOrCreate(clientIPID, p.Timestamp, c.overtimeBuckets)
	if created && p.ClientName != "" {
		client.NameID = c.Interner.Intern(p.ClientName)
	}
	client.Count++
	client.LastQuery = p.Timestamp

	verdict := c.RateLimit.Admit(client, c.logger, p.ClientIP)

	rec := Record{
		Timestamp:    p.Timestamp,
		Type:         p.Type,
		Status:       StatusUnknown,
		ReplyType:    ReplyUnknown,
		DNSSECStatus: DNSSECUnknown,
		DomainID:     domainID,
		ClientID:     clientIPID,
		UpstreamID:   NoHandle,
		RegexID:      -1,
		ClientNameID: client.NameID,
	}
	rec.Flags.RateLimited = verdict == RateLimitRefuse
	rec.Flags.Dirty = true

	id := c.Ring.Append(rec)
	c.Counters.AdmitCounters(p.Type)
	c.Overtime.Add(p.Timestamp, p.Type, false, false, false)

	bucketIdx := int(slotFor(p.Timestamp)-slotFor(client.FirstSeen)) % c.overtimeBuckets
	if bucketIdx >= 0 && bucketIdx < len(client.Overtime) {
		client.Overtime[bucketIdx]++
	}

	// A flush failure routes every new admission to DBBUSY until the
	// mirror recovers, per §4.5's "feeds the classifier's DBBUSY verdict".
	if c.dbBusy {
		if live := c.Ring.Get(id); live != nil {
			ChangeStatus(&c.Counters, c.Domains, c.Clients, c.Overtime, live, StatusDBBusy)
		}
	}

	return NewQueryResult{ID: id, Verdict: verdict}
}

// SetStatus transitions the query identified by id to newStatus, routing
// through the classifier's single counter-owning entry point. Returns false
// if id has already aged out of the ring.
func (c *Core) SetStatus(id int64, newStatus Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.Ring.Get(id)
	if rec == nil {
		return false
	}
	ChangeStatus(&c.Counters, c.Domains, c.Clients, c.Overtime, rec, newStatus)
	rec.Flags.Dirty = true
	return true
}

// SetReply records the final answer shape and timing for id.
func (c *Core) SetReply(id int64, reply ReplyType, replyTimeMs float64, ttl int32, dnssec DNSSECStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.Ring.Get(id)
	if rec == nil {
		return false
	}
	c.Counters.SetReply(rec, reply)
	rec.ReplyTimeMs = replyTimeMs
	rec.TTL = ttl
	rec.DNSSECStatus = dnssec
	rec.Flags.Dirty = true
	return true
}

// SetUpstream attaches the upstream that answered id, creating an upstream
// aggregate record on first sighting.
func (c *Core) SetUpstream(id int64, upstreamIP string, port int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.Ring.Get(id)
	if rec == nil {
		return false
	}
	upstreamIPID := c.Interner.Intern(upstreamIP)
	upstream, _ := c.Upstreams.GetOrCreate(upstreamIPID, port)
	upstream.Count++
	rec.UpstreamID = upstreamIPID
	rec.Flags.Dirty = true
	return true
}

// SetRegex records which regex entry matched id, for REGEX/REGEX_CNAME
// statuses.
func (c *Core) SetRegex(id int64, regexID int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.Ring.Get(id)
	if rec == nil {
		return false
	}
	rec.RegexID = regexID
	rec.Flags.Dirty = true
	return true
}

// SetDBBusy marks whether the SQL mirror is currently failing to accept
// writes. Held under the same mutex as every other table so RecordQuery
// observes the transition atomically with admission, per §4.5's flush
// failure feeding the classifier's DBBUSY verdict.
func (c *Core) SetDBBusy(busy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dbBusy = busy
}

// DBBusy reports the current flush-failure state.
func (c *Core) DBBusy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dbBusy
}

// Dirty drains every record touched since the last call, clearing each
// one's Dirty flag under a single write-lock pass, for the periodic
// SQL-mirror flush described by §4.5. Records are returned in id order but
// as detached copies — the flusher resolves their interned handles and
// writes them to SQL without holding the Core lock.
func (c *Core) Dirty() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Record
	for id := c.Ring.OldestLiveID(); id < c.Ring.Len(); id++ {
		rec := c.Ring.Get(id)
		if rec == nil || !rec.Flags.Dirty {
			continue
		}
		out = append(out, *rec)
		rec.Flags.Dirty = false
	}
	return out
}

// Resolve turns a Record's interned handles into the strings a SQL row
// needs, under the Core read lock so the interner arena cannot grow (and
// reallocate) mid-read.
func (c *Core) Resolve(rec Record) (domain, client, clientName, upstream string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	domain = c.Interner.Get(rec.DomainID)
	client = c.Interner.Get(rec.ClientID)
	clientName = c.Interner.Get(rec.ClientNameID)
	if rec.UpstreamID != NoHandle {
		upstream = c.Interner.Get(rec.UpstreamID)
	}
	return domain, client, clientName, upstream
}

// View runs fn with the Core RLock held, for read-only multi-table queries
// (query-log filtering, suggestions, stats) that need a consistent
// snapshot across tables without copying them wholesale.
func (c *Core) View(fn func(c *Core)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c)
}

// Update runs fn with the Core write lock held, for callers (GC, the rate
// limit window reset) that need to mutate more than one table atomically.
func (c *Core) Update(fn func(c *Core)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

// Snapshot is the overview payload for /api/stats/summary.
type Snapshot struct {
	TotalQueries  int64
	BlockedQueries int64
	UniqueDomains int
	UniqueClients int
	Counters      Counters
}

// Stats returns a consistent overview snapshot.
func (c *Core) Stats() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var blocked int64
	for s, isBlocked := range blockedSet {
		if isBlocked {
			blocked += c.Counters.Status[s]
		}
	}
	return Snapshot{
		TotalQueries:   c.Counters.Queries,
		BlockedQueries: blocked,
		UniqueDomains:  c.Domains.Len(),
		UniqueClients:  c.Clients.Len(),
		Counters:       c.Counters,
	}
}
