// Package config provides configuration loading and validation for the
// sentinel sidecar.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags (not handled here, see cmd/sentineld/main.go)
//  2. Environment variables (SENTINEL_* prefix)
//  3. YAML config file (if specified with --config)
//  4. Hardcoded defaults
//
// All configuration is validated during Load() to ensure correctness early.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// setDefaults configures all default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)

	v.SetDefault("session.timeout", "300s")
	v.SetDefault("session.max_slots", 64)
	v.SetDefault("session.local_api_auth", true)

	v.SetDefault("rate_limit.count", 1000)
	v.SetDefault("rate_limit.interval", 60)

	v.SetDefault("store.ring_capacity", 10000)
	v.SetDefault("store.overtime_buckets", 144) // 24h of 10-minute buckets
	v.SetDefault("store.disk_path", "")
	v.SetDefault("store.db_interval", "1s")
	v.SetDefault("store.max_history", "24h")

	v.SetDefault("gc.interval", "10m")
	v.SetDefault("gc.resource_check", "5m")
	v.SetDefault("gc.reply_when_busy", "REFUSED")
	v.SetDefault("gc.log_path", "")

	v.SetDefault("auth.pwhash", "")
	v.SetDefault("auth.app_pwhash", "")
	v.SetDefault("auth.totp_secret", "")
	v.SetDefault("auth.max_login_attempts", 10)
	v.SetDefault("auth.login_attempt_window", "60s")

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.include_pid", false)
	v.SetDefault("logging.extra_fields", map[string]string{})

	v.SetDefault("privacy_level", "SHOW_ALL")
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	loadAPIConfig(v, cfg)
	loadSessionConfig(v, cfg)
	loadRateLimitConfig(v, cfg)
	loadStoreConfig(v, cfg)
	loadGCConfig(v, cfg)
	loadAuthConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadPrivacyConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadAPIConfig(v *viper.Viper, cfg *Config) {
	cfg.API.Host = v.GetString("api.host")
	cfg.API.Port = v.GetInt("api.port")
}

func loadSessionConfig(v *viper.Viper, cfg *Config) {
	cfg.Session.Timeout = v.GetString("session.timeout")
	cfg.Session.MaxSlots = v.GetInt("session.max_slots")
	cfg.Session.LocalAPIAuth = v.GetBool("session.local_api_auth")
}

func loadRateLimitConfig(v *viper.Viper, cfg *Config) {
	cfg.RateLimit.Count = uint32(v.GetUint("rate_limit.count"))
	cfg.RateLimit.Interval = uint32(v.GetUint("rate_limit.interval"))
}

func loadStoreConfig(v *viper.Viper, cfg *Config) {
	cfg.Store.RingCapacity = v.GetInt("store.ring_capacity")
	cfg.Store.OvertimeBuckets = v.GetInt("store.overtime_buckets")
	cfg.Store.DiskPath = v.GetString("store.disk_path")
	cfg.Store.DBInterval = v.GetString("store.db_interval")
	cfg.Store.MaxHistory = v.GetString("store.max_history")
}

func loadGCConfig(v *viper.Viper, cfg *Config) {
	cfg.GC.Interval = v.GetString("gc.interval")
	cfg.GC.ResourceCheck = v.GetString("gc.resource_check")
	cfg.GC.ReplyWhenBusy = strings.ToUpper(v.GetString("gc.reply_when_busy"))
	cfg.GC.LogPath = v.GetString("gc.log_path")
}

func loadAuthConfig(v *viper.Viper, cfg *Config) {
	cfg.Auth.PasswordHash = v.GetString("auth.pwhash")
	cfg.Auth.AppPasswordHash = v.GetString("auth.app_pwhash")
	cfg.Auth.TOTPSecret = v.GetString("auth.totp_secret")
	cfg.Auth.MaxLoginAttempts = v.GetInt("auth.max_login_attempts")
	cfg.Auth.LoginAttemptWindow = v.GetString("auth.login_attempt_window")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
	cfg.Logging.StructuredFormat = v.GetString("logging.structured_format")
	cfg.Logging.IncludePID = v.GetBool("logging.include_pid")
	cfg.Logging.ExtraFields = v.GetStringMapString("logging.extra_fields")
}

func loadPrivacyConfig(v *viper.Viper, cfg *Config) {
	cfg.PrivacyRaw = strings.ToUpper(v.GetString("privacy_level"))
	cfg.Privacy = parsePrivacyLevel(cfg.PrivacyRaw)
}

func parsePrivacyLevel(raw string) PrivacyLevel {
	switch strings.TrimSpace(raw) {
	case "HIDE_DOMAINS":
		return PrivacyHideDomains
	case "HIDE_DOMAINS_CLIENTS":
		return PrivacyHideDomainsClients
	case "MAXIMUM":
		return PrivacyMaximum
	default:
		return PrivacyShowAll
	}
}

var validReplyWhenBusy = map[string]bool{
	"REFUSED":  true,
	"NODATA":   true,
	"NXDOMAIN": true,
	"DROP":     true,
}

// normalizeConfig validates and normalizes the configuration.
func normalizeConfig(cfg *Config) error {
	if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
		return errors.New("api.port must be 1..65535")
	}
	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}

	if cfg.Session.MaxSlots <= 0 {
		return errors.New("session.max_slots must be > 0")
	}

	if cfg.Store.RingCapacity <= 0 {
		return errors.New("store.ring_capacity must be > 0")
	}
	if cfg.Store.OvertimeBuckets <= 0 {
		return errors.New("store.overtime_buckets must be > 0")
	}

	if !validReplyWhenBusy[cfg.GC.ReplyWhenBusy] {
		return fmt.Errorf("gc.reply_when_busy must be one of REFUSED, NODATA, NXDOMAIN, DROP, got %q", cfg.GC.ReplyWhenBusy)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	return nil
}
