// Package gc implements the housekeeping task described in the query
// pipeline's garbage collector component: a single background loop that
// flushes dirty records into the SQL mirror, ages out old queries into the
// long-term database, resets rate-limit windows, and watches host
// load and disk usage (memory is not checked), grounded on the teacher's
// internal/api/handlers/health.go
// use of gopsutil for exactly the same host metrics.
package gc

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"

	"github.com/relaydns/sentinel/internal/core"
	"github.com/relaydns/sentinel/internal/store"
)

// Config holds the intervals the collector runs on, matching the knobs
// named in spec.md §4.6 (GCinterval, maxHistory, the 5-minute resource
// check cadence, and the rate-limit reset interval already owned by
// core.RateLimitPolicy).
type Config struct {
	GCInterval      time.Duration
	MaxHistory      time.Duration
	ResourceCheck   time.Duration // RCinterval, default 5 minutes
	DBInterval      time.Duration // §4.5 fast-tier flush cadence, default 1 second
	DBPath          string        // on-disk database path, for same-device checks
	LogPath         string        // log directory, for same-device checks
	ReplyWhenBusy   string
}

// Collector owns the housekeeping loop. It holds no state of its own beyond
// timers — everything it mutates lives in the Core and Store it is given.
type Collector struct {
	core   *core.Core
	store  *store.Store
	cfg    Config
	logger *slog.Logger

	lastRateLimitReset time.Time
	lastResourceCheck  time.Time
	lastDBFlush        time.Time
	cpuEWMA            float64
}

// New builds a Collector for core/store pinned to cfg's intervals.
func New(c *core.Core, s *store.Store, cfg Config, logger *slog.Logger) *Collector {
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.ResourceCheck <= 0 {
		cfg.ResourceCheck = 5 * time.Minute
	}
	if cfg.DBInterval <= 0 {
		cfg.DBInterval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{core: c, store: s, cfg: cfg, logger: logger}
}

// Run executes the 1-second housekeeping loop until ctx is cancelled,
// matching §4.6's "single housekeeping task with a 1-second sleep loop."
func (gc *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	now := time.Now()
	gc.lastRateLimitReset = now
	gc.lastResourceCheck = now
	gc.lastDBFlush = now

	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			gc.tick(ctx, tick)
		}
	}
}

func (gc *Collector) tick(ctx context.Context, now time.Time) {
	if gc.core.RateLimit.Enabled() && now.Sub(gc.lastRateLimitReset) >= time.Duration(gc.core.RateLimit.Interval)*time.Second {
		gc.core.Update(func(c *core.Core) {
			c.RateLimit.ResetWindow(c.Clients, c.Interner, gc.logger)
		})
		gc.lastRateLimitReset = now
	}

	gc.sampleCPU()

	if now.Sub(gc.lastDBFlush) >= gc.cfg.DBInterval {
		gc.flushMem(ctx)
		gc.lastDBFlush = now
	}

	if now.Sub(gc.lastResourceCheck) >= gc.cfg.ResourceCheck {
		gc.checkResources(ctx, now)
		gc.lastResourceCheck = now
	}

	if gc.cfg.GCInterval > 0 && alignedTick(now, gc.cfg.GCInterval) {
		gc.runGC(ctx, now)
	}
}

// sampleCPU updates an exponentially-weighted moving average of host CPU
// usage, sampled every tick per §4.6 step 2.
func (gc *Collector) sampleCPU() {
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		return
	}
	const alpha = 0.1
	if gc.cpuEWMA == 0 {
		gc.cpuEWMA = percents[0]
		return
	}
	gc.cpuEWMA = alpha*percents[0] + (1-alpha)*gc.cpuEWMA
}

// checkResources runs the 5-minute load/disk checks from §4.6 step 3.
func (gc *Collector) checkResources(ctx context.Context, now time.Time) {
	if avg, err := load.Avg(); err == nil {
		cores := float64(runtime.NumCPU())
		if avg.Load1 > cores {
			gc.logger.Warn("load average exceeds core count", "load1", avg.Load1, "cores", cores)
			_ = gc.store.LogMessage(ctx, "load_alert", "load average exceeds core count")
		}
	}

	sameDevice := gc.cfg.DBPath != "" && gc.cfg.LogPath != "" && checkFilesOnSameDevice(gc.cfg.DBPath, gc.cfg.LogPath)

	if gc.cfg.DBPath != "" {
		gc.checkDiskUsage(ctx, gc.cfg.DBPath, "database")
	}
	if gc.cfg.LogPath != "" && !sameDevice {
		gc.checkDiskUsage(ctx, gc.cfg.LogPath, "log")
	}
}

func (gc *Collector) checkDiskUsage(ctx context.Context, path, label string) {
	usage, err := disk.Usage(path)
	if err != nil {
		// Advisory check only: a failure to stat the path is logged, never fatal.
		gc.logger.Debug("disk usage check failed", "path", path, "err", err)
		return
	}
	if usage.UsedPercent >= 90 {
		gc.logger.Warn("disk usage high", "path", path, "label", label, "used_percent", usage.UsedPercent)
		_ = gc.store.LogMessage(ctx, "disk_alert", "disk usage high", label, path)
	}
}

// alignedTick reports whether now falls on an interval-boundary second,
// so GCInterval runs are aligned to wall-clock multiples of the interval
// rather than drifting with process start time.
func alignedTick(now time.Time, interval time.Duration) bool {
	sec := now.Unix()
	step := int64(interval.Seconds())
	if step <= 0 {
		return false
	}
	return sec%step == 0
}
