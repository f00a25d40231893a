package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relaydns/sentinel/internal/api"
	"github.com/relaydns/sentinel/internal/auth"
	"github.com/relaydns/sentinel/internal/config"
	"github.com/relaydns/sentinel/internal/core"
	"github.com/relaydns/sentinel/internal/gc"
	"github.com/relaydns/sentinel/internal/logging"
	"github.com/relaydns/sentinel/internal/session"
	"github.com/relaydns/sentinel/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values. The command line can set
// the config file path, override the management API's bind address, and
// switch logging to JSON or debug level; every other knob lives in the
// config file or environment.
type cliFlags struct {
	configPath string
	host       string
	port       int
	jsonLogs   bool
	debug      bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file (env SENTINEL_CONFIG)")
	flag.StringVar(&f.host, "host", "", "Override management API bind host")
	flag.IntVar(&f.port, "port", 0, "Override management API bind port")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.host != "" {
		cfg.API.Host = f.host
	}
	if f.port != 0 {
		cfg.API.Port = f.port
	}
	if f.jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if f.debug {
		cfg.Logging.Level = "DEBUG"
	}
}

func run() error {
	flags := parseFlags()

	cfgPath := config.ResolveConfigPath(flags.configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyCLIOverrides(cfg, flags)

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})
	logger.Info("sentinel starting",
		"config", cfgPath,
		"api_host", cfg.API.Host,
		"api_port", cfg.API.Port,
		"privacy", cfg.Privacy.String(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := core.NewCore(core.Config{
		RingCapacity:     cfg.Store.RingCapacity,
		OvertimeBuckets:  cfg.Store.OvertimeBuckets,
		RateLimitCount:   cfg.RateLimit.Count,
		RateLimitSeconds: cfg.RateLimit.Interval,
		Logger:           logger,
	})

	st, err := store.Open(ctx, cfg.Store.DiskPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	sessions := session.NewTable(cfg.Session.MaxSlots, parseDurationOr(cfg.Session.Timeout, 5*time.Minute))

	verifier := auth.NewVerifier(
		cfg.Auth.PasswordHash,
		cfg.Auth.AppPasswordHash,
		cfg.Auth.TOTPSecret,
		cfg.Auth.MaxLoginAttempts,
		parseDurationOr(cfg.Auth.LoginAttemptWindow, time.Minute),
	)

	registry := config.NewRegistry(cfg)

	collector := gc.New(c, st, gc.Config{
		GCInterval:    parseDurationOr(cfg.GC.Interval, 10*time.Minute),
		MaxHistory:    parseDurationOr(cfg.Store.MaxHistory, 24*time.Hour),
		ResourceCheck: parseDurationOr(cfg.GC.ResourceCheck, 5*time.Minute),
		DBInterval:    parseDurationOr(cfg.Store.DBInterval, time.Second),
		DBPath:        cfg.Store.DiskPath,
		LogPath:       cfg.GC.LogPath,
		ReplyWhenBusy: cfg.GC.ReplyWhenBusy,
	}, logger)
	go collector.Run(ctx)

	apiSrv := api.New(cfg, registry, c, st, sessions, verifier, logger)
	logger.Info("management API starting", "addr", apiSrv.Addr())

	go func() {
		serveErr := apiSrv.ListenAndServe()
		if serveErr == nil || errors.Is(serveErr, http.ErrServerClosed) {
			return
		}
		logger.Error("API server error", "err", serveErr)
		cancel()
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API server shutdown error", "err", err)
	}
	logger.Info("sentinel stopped")
	return nil
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
