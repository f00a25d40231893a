package config

import (
	"os"
	"strings"
)

// PrivacyLevel progressively suppresses API detail, per the glossary's
// "global knob that progressively suppresses API detail (domains, then
// clients, then everything)".
type PrivacyLevel int

const (
	PrivacyShowAll PrivacyLevel = iota
	PrivacyHideDomains
	PrivacyHideDomainsClients
	PrivacyMaximum
)

// String returns the canonical wire form of the privacy level.
func (p PrivacyLevel) String() string {
	switch p {
	case PrivacyShowAll:
		return "SHOW_ALL"
	case PrivacyHideDomains:
		return "HIDE_DOMAINS"
	case PrivacyHideDomainsClients:
		return "HIDE_DOMAINS_CLIENTS"
	case PrivacyMaximum:
		return "MAXIMUM"
	default:
		return "UNKNOWN"
	}
}

// SessionConfig controls the fixed-slot session table (component I).
type SessionConfig struct {
	Timeout      string `yaml:"timeout"        mapstructure:"timeout"        json:"timeout"`
	MaxSlots     int    `yaml:"max_slots"      mapstructure:"max_slots"      json:"max_slots"`
	LocalAPIAuth bool   `yaml:"local_api_auth" mapstructure:"local_api_auth" json:"local_api_auth"`
}

// RateLimitConfig controls the per-client sliding-window query rate limiter
// (component F), distinct from the login-attempt limiter under Auth.
type RateLimitConfig struct {
	Count    uint32 `yaml:"count"    mapstructure:"count"    json:"count"`
	Interval uint32 `yaml:"interval" mapstructure:"interval" json:"interval"`
}

// StoreConfig controls the two-tier SQL mirror (component G) and the
// in-memory aggregates it backs.
type StoreConfig struct {
	RingCapacity    int    `yaml:"ring_capacity"    mapstructure:"ring_capacity"    json:"ring_capacity"`
	OvertimeBuckets int    `yaml:"overtime_buckets" mapstructure:"overtime_buckets" json:"overtime_buckets"`
	DiskPath        string `yaml:"disk_path"        mapstructure:"disk_path"        json:"disk_path"`
	DBInterval      string `yaml:"db_interval"      mapstructure:"db_interval"      json:"db_interval"`
	MaxHistory      string `yaml:"max_history"      mapstructure:"max_history"      json:"max_history"`
}

// GCConfig controls the housekeeping task (component H).
type GCConfig struct {
	Interval      string `yaml:"interval"        mapstructure:"interval"        json:"interval"`
	ResourceCheck string `yaml:"resource_check"  mapstructure:"resource_check"  json:"resource_check"`
	ReplyWhenBusy string `yaml:"reply_when_busy" mapstructure:"reply_when_busy" json:"reply_when_busy"`
	LogPath       string `yaml:"log_path"        mapstructure:"log_path"        json:"log_path"`
}

// AuthConfig controls the login pipeline (component J).
//
// Note: PasswordHash/AppPasswordHash/TOTPSecret are secrets and must never
// be reflected back by the config-dump endpoint.
type AuthConfig struct {
	PasswordHash        string `yaml:"pwhash"                mapstructure:"pwhash"                json:"-"`
	AppPasswordHash      string `yaml:"app_pwhash"            mapstructure:"app_pwhash"            json:"-"`
	TOTPSecret          string `yaml:"totp_secret"           mapstructure:"totp_secret"           json:"-"`
	MaxLoginAttempts    int    `yaml:"max_login_attempts"    mapstructure:"max_login_attempts"    json:"max_login_attempts"`
	LoginAttemptWindow  string `yaml:"login_attempt_window"  mapstructure:"login_attempt_window"  json:"login_attempt_window"`
}

// LoggingConfig contains logging settings, carried over unchanged from the
// teacher's own config surface.
type LoggingConfig struct {
	Level            string            `yaml:"level"             mapstructure:"level"             json:"level"`
	Structured       bool              `yaml:"structured"        mapstructure:"structured"        json:"structured"`
	StructuredFormat string            `yaml:"structured_format" mapstructure:"structured_format" json:"structured_format"`
	IncludePID       bool              `yaml:"include_pid"       mapstructure:"include_pid"       json:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields"      mapstructure:"extra_fields"      json:"extra_fields,omitempty"`
}

// APIConfig contains the management API's own listen settings.
type APIConfig struct {
	Host string `yaml:"host" mapstructure:"host" json:"host"`
	Port int    `yaml:"port" mapstructure:"port" json:"port"`
}

// Config is the root configuration structure for the sidecar.
type Config struct {
	API       APIConfig       `yaml:"api"        mapstructure:"api"`
	Session   SessionConfig   `yaml:"session"    mapstructure:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Store     StoreConfig     `yaml:"store"      mapstructure:"store"`
	GC        GCConfig        `yaml:"gc"         mapstructure:"gc"`
	Auth      AuthConfig      `yaml:"auth"       mapstructure:"auth"`
	Logging   LoggingConfig   `yaml:"logging"    mapstructure:"logging"`
	Privacy   PrivacyLevel    `yaml:"-"          mapstructure:"-"`
	PrivacyRaw string         `yaml:"privacy_level" mapstructure:"privacy_level"`
}

// ResolveConfigPath determines the config file path from flag or environment.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("SENTINEL_CONFIG")); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from a YAML file with environment variable
// overrides. This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (SENTINEL_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
