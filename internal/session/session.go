// Package session implements the fixed-size authenticated-session table
// described by the query pipeline's auth component: a bounded array of
// slots, each carrying a session id and CSRF token minted from a
// cryptographic RNG, reclaimed opportunistically as slots expire.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

// ErrNoFreeSlots is returned by Create when every slot is occupied by a
// still-valid session.
var ErrNoFreeSlots = errors.New("session: no free slots")

// TLSFlags records whether a session was ever observed over plaintext
// alongside TLS, per §4.7's tls{login, mixed}.
type TLSFlags struct {
	Login bool // the connection was TLS at login time
	Mixed bool // the session has since been used over the opposite scheme
}

// Session is one occupied slot in the table.
type Session struct {
	Used       bool
	App        bool // true for an app/token login (APPPASSWORD_CORRECT)
	TLS        TLSFlags
	LoginAt    time.Time
	ValidUntil time.Time
	SID        string
	CSRF       string
	RemoteAddr string
	UserAgent  string
}

// Valid reports whether this slot is a live session as of now.
func (s *Session) Valid(now time.Time) bool {
	return s.Used && !s.ValidUntil.Before(now)
}

// Table is the fixed-size session array. All access is behind Table's own
// mutex, separate from internal/core's Core mutex, because sessions are
// touched from the API layer only, never from the hot query-ingestion path.
type Table struct {
	mu       sync.Mutex
	slots    []Session
	timeout  time.Duration
}

// NewTable creates a table with the given fixed capacity (API_MAX_CLIENTS
// in the original) and sliding-expiry window.
func NewTable(capacity int, timeout time.Duration) *Table {
	if capacity < 1 {
		capacity = 1
	}
	return &Table{slots: make([]Session, capacity), timeout: timeout}
}

// Create mints a new session: it first frees every expired slot (per
// §4.7), then takes the first unused slot, fills it with a fresh SID/CSRF
// pair, and returns the slot index plus the session value. Returns ErrNoFreeSlots if every slot holds a live session.
func (t *Table) Create(now time.Time, remoteAddr, userAgent string, isTLS, app bool) (int, Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].Used && t.slots[i].ValidUntil.Before(now) {
			t.slots[i] = Session{}
		}
	}

	for i := range t.slots {
		if t.slots[i].Used {
			continue
		}

		sid, err := randomToken()
		if err != nil {
			return -1, Session{}, err
		}
		csrf, err := randomToken()
		if err != nil {
			return -1, Session{}, err
		}

		t.slots[i] = Session{
			Used:       true,
			App:        app,
			TLS:        TLSFlags{Login: isTLS},
			LoginAt:    now,
			ValidUntil: now.Add(t.timeout),
			SID:        sid,
			CSRF:       csrf,
			RemoteAddr: remoteAddr,
			UserAgent:  userAgent,
		}
		return i, t.slots[i], nil
	}

	return -1, Session{}, ErrNoFreeSlots
}

// Authenticate validates a presented SID against the table, enforcing the
// remote-address match and sliding the expiry forward on success, per
// §4.7's per-request checks 3-4. Returns the slot index and a copy of the
// (now-updated) session, or ok=false if the SID does not resolve to a live
// session bound to remoteAddr.
func (t *Table) Authenticate(now time.Time, sid, remoteAddr string, isTLS bool) (int, Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		s := &t.slots[i]
		if !s.Used || s.SID != sid {
			continue
		}
		if !s.Valid(now) || s.RemoteAddr != remoteAddr {
			return -1, Session{}, false
		}
		s.ValidUntil = now.Add(t.timeout)
		if isTLS != s.TLS.Login {
			s.TLS.Mixed = true
		}
		return i, *s, true
	}
	return -1, Session{}, false
}

// Get returns a copy of the session at index i, and whether it is currently
// used (expired or not — callers needing liveness should check Valid).
func (t *Table) Get(i int) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.slots) || !t.slots[i].Used {
		return Session{}, false
	}
	return t.slots[i], true
}

// Revoke frees slot i unconditionally, the logout path; it is idempotent —
// revoking an already-free slot is not an error.
func (t *Table) Revoke(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i >= 0 && i < len(t.slots) {
		t.slots[i] = Session{}
	}
}

// RevokeSID looks up a session by SID and frees it, returning whether a
// session was found. Used by the idempotent DELETE /api/auth path, which
// must succeed even if the caller's SID has already expired or was never
// valid.
func (t *Table) RevokeSID(sid string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].Used && t.slots[i].SID == sid {
			t.slots[i] = Session{}
			return true
		}
	}
	return false
}

// All returns a snapshot of every live (used and unexpired) session, for the
// admin GET /api/auth/sessions listing. Each entry carries its slot Index,
// needed by callers wanting to revoke a specific listed session.
func (t *Table) All(now time.Time) []IndexedSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []IndexedSession
	for i := range t.slots {
		if t.slots[i].Valid(now) {
			out = append(out, IndexedSession{Index: i, Session: t.slots[i]})
		}
	}
	return out
}

// IndexedSession pairs a session with its slot index.
type IndexedSession struct {
	Index   int
	Session Session
}

// randomToken returns 32 cryptographically random bytes base64-encoded
// (URL alphabet) without padding, which yields exactly the 43-character
// SID/CSRF length used throughout the original implementation.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
