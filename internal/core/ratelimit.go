package core

import (
	"log/slog"
	"math"
)

// RateLimitVerdict is the admission decision for one query, per §4.4.
type RateLimitVerdict uint8

const (
	// RateLimitAllow means the query should proceed to classification.
	RateLimitAllow RateLimitVerdict = iota
	// RateLimitRefuse means the client is over its budget; the classifier
	// should answer REFUSED without forwarding.
	RateLimitRefuse
)

// RateLimitPolicy holds the per-client sliding-window thresholds, grounded
// on spec §4.4. Unlike the teacher's DNS-admission token bucket
// (internal/server/rate_limit.go, which governs whether a *packet* is even
// parsed), this policy governs a sticky per-client flag that persists
// across GC windows until a window's accrued count drops back under the
// threshold — the idiom is adapted from that file's mutex+map style, but
// the semantics are the source's "sticky until the window is clean" rule,
// not a replenishing bucket.
type RateLimitPolicy struct {
	// Count is the maximum number of queries a client may make within
	// Interval seconds before being marked rate_limited.
	Count uint32
	// Interval is the window length in seconds. Zero disables rate
	// limiting entirely.
	Interval uint32
}

// Enabled reports whether this policy does anything.
func (p RateLimitPolicy) Enabled() bool {
	return p.Interval > 0 && p.Count > 0
}

// Admit advances client's rate_limit_count and returns the verdict for this
// query, per §4.4: "if rate_limited, return REFUSED; else increment
// rate_limit_count, and if it exceeds count, set rate_limited." Must be
// called with the Core mutex held.
func (p RateLimitPolicy) Admit(client *ClientRecord, logger *slog.Logger, clientIP string) RateLimitVerdict {
	if !p.Enabled() || client == nil {
		return RateLimitAllow
	}
	if client.Flags.RateLimited {
		return RateLimitRefuse
	}
	client.RateLimitCount++
	if client.RateLimitCount > p.Count {
		client.Flags.RateLimited = true
		if logger != nil {
			logger.Info("client exceeded rate limit, now rate-limited",
				"client", clientIP, "count", client.RateLimitCount, "limit", p.Count)
		}
		return RateLimitRefuse
	}
	return RateLimitAllow
}

// ResetWindow is run by the GC every Interval seconds (§4.6 step 1 / gc.c's
// reset_rate_limiting): it zeroes every client's accrued count, and clears
// the sticky flag unless the accrued count from the window just ending
// still exceeds the threshold, in which case rate limiting continues into
// the next window and an extension is logged.
func (p RateLimitPolicy) ResetWindow(clients *ClientTable, interner *Interner, logger *slog.Logger) {
	if !p.Enabled() {
		return
	}
	for i := range clients.records {
		c := &clients.records[i]
		if !c.Flags.RateLimited {
			c.RateLimitCount = 0
			continue
		}
		ip := interner.Get(c.IPID)
		if c.RateLimitCount > p.Count {
			if logger != nil {
				logger.Info("still rate-limiting client", "client", ip, "extra_queries", c.RateLimitCount)
			}
		} else {
			if logger != nil {
				logger.Info("ending rate-limitation of client", "client", ip)
			}
			c.Flags.RateLimited = false
		}
		c.RateLimitCount = 0
	}
}

// Turnaround computes the remaining seconds until the current
// rate-limiting window for a client with the given accrued count is over,
// per §4.4's get_rate_limit_turnaround: interval * ceil(count/limit) -
// (now - lastReset).
func (p RateLimitPolicy) Turnaround(rateLimitCount uint32, secondsSinceLastReset float64) float64 {
	if p.Count == 0 {
		return 0
	}
	howOften := math.Ceil(float64(rateLimitCount) / float64(p.Count))
	return float64(p.Interval)*howOften - secondsSinceLastReset
}
