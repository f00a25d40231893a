package auth

import (
	"sync"
	"time"
)

// loginAttempts tracks failed-login counts per source IP, independent of
// the DNS-query rate limiter in internal/core — per §4.8, "login attempts
// per source IP are themselves rate-limited independently of query rate
// limiting." The shape (mutex-guarded map of small counters) is the same
// idiom core.RateLimitPolicy borrows from the teacher's
// internal/server/rate_limit.go; the policy itself (fixed attempt budget
// per rolling window, reset on success) is new here since login attempts
// have no analogue in the teacher's DNS-admission limiter.
type loginAttempts struct {
	mu       sync.Mutex
	attempts map[string]loginWindow

	maxAttempts int
	window      time.Duration
}

type loginWindow struct {
	count     int
	windowEnd time.Time
}

func newLoginAttempts(maxAttempts int, window time.Duration) *loginAttempts {
	return &loginAttempts{
		attempts:    make(map[string]loginWindow),
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// allow reports whether remoteIP may attempt another login right now.
func (l *loginAttempts) allow(remoteIP string, now time.Time) bool {
	if l.maxAttempts <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.attempts[remoteIP]
	if !ok || now.After(w.windowEnd) {
		return true
	}
	return w.count < l.maxAttempts
}

// recordFailure increments remoteIP's failed-attempt counter, opening a new
// window if the previous one has elapsed.
func (l *loginAttempts) recordFailure(remoteIP string, now time.Time) {
	if l.maxAttempts <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.attempts[remoteIP]
	if !ok || now.After(w.windowEnd) {
		w = loginWindow{windowEnd: now.Add(l.window)}
	}
	w.count++
	l.attempts[remoteIP] = w
}

// recordSuccess clears remoteIP's counter, so a correct login immediately
// restores full attempt budget.
func (l *loginAttempts) recordSuccess(remoteIP string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, remoteIP)
}
