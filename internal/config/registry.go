package config

import "strconv"

// ItemType tags the underlying Go type a config item's value holds, mirroring
// the original's typed-leaf config DSL (bool, int, string, enum, ...) without
// reintroducing that DSL.
type ItemType int

const (
	TypeBool ItemType = iota
	TypeInt
	TypeString
	TypeEnum
)

// Flag bits on an Item, matching spec.md §9's ConfigItem.flags field.
type ItemFlag int

const (
	// FlagRestart marks a setting that only takes effect after the process
	// restarts (no resolver to restart in this sidecar, but the bit is kept
	// for fidelity and for settings the GC/store read only once at startup,
	// e.g. ring/overtime capacities).
	FlagRestart ItemFlag = 1 << iota
	// FlagSecret marks a setting that must never be echoed back by the
	// config-dump endpoint.
	FlagSecret
)

// Item is one entry in the flat config registry: a typed, named,
// self-describing config leaf, replacing "pointer arithmetic into a big
// struct of config items" with an explicit, iterable record.
type Item struct {
	Key     string
	Help    string
	Type    ItemType
	Default string
	Value   string
	Flags   ItemFlag
}

// Registry is the flat array of config items built once at startup, iterated
// by the read-only GET /api/config dump. It never grows at runtime; values
// are a snapshot of the Config used to build it.
type Registry struct {
	items []Item
}

// NewRegistry builds the flat registry from a loaded Config. This is the only
// place the typed Config struct is walked field-by-field — everywhere else in
// the API surface, callers iterate the flat []Item slice.
func NewRegistry(cfg *Config) *Registry {
	items := []Item{
		{Key: "api.host", Help: "management API bind host", Type: TypeString, Default: "127.0.0.1", Value: cfg.API.Host, Flags: FlagRestart},
		{Key: "api.port", Help: "management API bind port", Type: TypeInt, Default: "8080", Value: strconv.Itoa(cfg.API.Port), Flags: FlagRestart},
		{Key: "session.timeout", Help: "session idle timeout", Type: TypeString, Default: "300s", Value: cfg.Session.Timeout},
		{Key: "session.max_slots", Help: "fixed session table capacity", Type: TypeInt, Default: "64", Value: strconv.Itoa(cfg.Session.MaxSlots), Flags: FlagRestart},
		{Key: "session.local_api_auth", Help: "bypass auth for loopback requests", Type: TypeBool, Default: "true", Value: btoa(cfg.Session.LocalAPIAuth)},
		{Key: "rate_limit.count", Help: "queries allowed per client per interval", Type: TypeInt, Default: "1000", Value: strconv.Itoa(int(cfg.RateLimit.Count))},
		{Key: "rate_limit.interval", Help: "rate limit window length in seconds", Type: TypeInt, Default: "60", Value: strconv.Itoa(int(cfg.RateLimit.Interval))},
		{Key: "store.ring_capacity", Help: "in-memory query ring capacity", Type: TypeInt, Default: "10000", Value: strconv.Itoa(cfg.Store.RingCapacity), Flags: FlagRestart},
		{Key: "store.overtime_buckets", Help: "number of 10-minute overtime buckets retained", Type: TypeInt, Default: "144", Value: strconv.Itoa(cfg.Store.OvertimeBuckets), Flags: FlagRestart},
		{Key: "store.disk_path", Help: "on-disk SQLite database path, empty disables the disk tier", Type: TypeString, Default: "", Value: cfg.Store.DiskPath, Flags: FlagRestart},
		{Key: "store.db_interval", Help: "flush cadence from the query ring to the in-memory SQL mirror", Type: TypeString, Default: "1s", Value: cfg.Store.DBInterval},
		{Key: "store.max_history", Help: "maximum age of a query before GC evicts it", Type: TypeString, Default: "24h", Value: cfg.Store.MaxHistory},
		{Key: "gc.interval", Help: "garbage collector run cadence", Type: TypeString, Default: "10m", Value: cfg.GC.Interval},
		{Key: "gc.resource_check", Help: "load/disk resource check cadence", Type: TypeString, Default: "5m", Value: cfg.GC.ResourceCheck},
		{Key: "gc.reply_when_busy", Help: "reply for queries while the SQL mirror is busy; validated and listed, not read by the query pipeline", Type: TypeEnum, Default: "REFUSED", Value: cfg.GC.ReplyWhenBusy},
		{Key: "auth.max_login_attempts", Help: "login attempts allowed per source IP per window", Type: TypeInt, Default: "10", Value: strconv.Itoa(cfg.Auth.MaxLoginAttempts)},
		{Key: "auth.login_attempt_window", Help: "login rate limit window length", Type: TypeString, Default: "60s", Value: cfg.Auth.LoginAttemptWindow},
		{Key: "auth.pwhash", Help: "bcrypt hash of the admin password", Type: TypeString, Default: "", Value: redacted(cfg.Auth.PasswordHash), Flags: FlagSecret},
		{Key: "auth.app_pwhash", Help: "bcrypt hash of the app password", Type: TypeString, Default: "", Value: redacted(cfg.Auth.AppPasswordHash), Flags: FlagSecret},
		{Key: "auth.totp_secret", Help: "base32 TOTP shared secret", Type: TypeString, Default: "", Value: redacted(cfg.Auth.TOTPSecret), Flags: FlagSecret},
		{Key: "logging.level", Help: "minimum log level", Type: TypeEnum, Default: "INFO", Value: cfg.Logging.Level},
		{Key: "logging.structured", Help: "emit structured (slog) log lines", Type: TypeBool, Default: "false", Value: btoa(cfg.Logging.Structured)},
		{Key: "privacy_level", Help: "progressively suppresses API detail", Type: TypeEnum, Default: "SHOW_ALL", Value: cfg.Privacy.String()},
	}
	return &Registry{items: items}
}

// Items returns the flat, ordered slice of config items for the dump
// endpoint. Callers must not mutate the returned slice.
func (r *Registry) Items() []Item {
	return r.items
}

// Get returns the item with the given key, if present.
func (r *Registry) Get(key string) (Item, bool) {
	for _, it := range r.items {
		if it.Key == key {
			return it, true
		}
	}
	return Item{}, false
}

func redacted(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func btoa(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
