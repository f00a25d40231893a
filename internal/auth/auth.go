// Package auth implements the login pipeline: password verification,
// optional TOTP, and per-source-IP login rate limiting, grounded on
// src/api/auth.c's api_auth() control flow. The HTTP Basic fallback is
// parsed by the API handler, which passes the password in here.
package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PasswordResult is the outcome of verifying a submitted password, mirrored
// from the original's enum password_result{CORRECT, APP_CORRECT, INCORRECT,
// RATE_LIMITED}.
type PasswordResult uint8

const (
	PasswordIncorrect PasswordResult = iota
	PasswordCorrect
	PasswordAppCorrect
	PasswordRateLimited
)

// LoginResult is the full verdict for a POST /api/auth attempt, adding the
// TOTP-required case the password result alone cannot express.
type LoginResult uint8

const (
	LoginDenied LoginResult = iota
	LoginOK
	LoginNeedsTOTP
	LoginTOTPIncorrect
	LoginRateLimited
)

// Verifier holds the configured credentials and login-attempt policy. A
// zero-value PasswordHash means "no password configured" — per §4.7's
// special verdict, any submitted password is then accepted
// (API_AUTH_EMPTYPASS); the login-attempt limit and a configured TOTP
// secret still apply.
type Verifier struct {
	PasswordHash    string // bcrypt hash of the primary password; empty = EMPTYPASS
	AppPasswordHash string // bcrypt hash of an optional long-lived app password
	TOTPSecret      string // base32 TOTP secret; empty disables TOTP

	attempts *loginAttempts
}

// NewVerifier builds a Verifier with its own login-attempt limiter.
func NewVerifier(passwordHash, appPasswordHash, totpSecret string, maxAttempts int, window time.Duration) *Verifier {
	return &Verifier{
		PasswordHash:    passwordHash,
		AppPasswordHash: appPasswordHash,
		TOTPSecret:      totpSecret,
		attempts:        newLoginAttempts(maxAttempts, window),
	}
}

// EmptyPassword reports whether no password is configured, the
// API_AUTH_EMPTYPASS special case.
func (v *Verifier) EmptyPassword() bool {
	return v.PasswordHash == ""
}

// VerifyPassword checks password against the configured hash(es), honoring
// the per-IP login-attempt budget first.
func (v *Verifier) VerifyPassword(remoteIP, password string, now time.Time) PasswordResult {
	if !v.attempts.allow(remoteIP, now) {
		return PasswordRateLimited
	}

	if v.EmptyPassword() {
		v.attempts.recordSuccess(remoteIP)
		return PasswordCorrect
	}

	if bcrypt.CompareHashAndPassword([]byte(v.PasswordHash), []byte(password)) == nil {
		v.attempts.recordSuccess(remoteIP)
		return PasswordCorrect
	}
	if v.AppPasswordHash != "" && bcrypt.CompareHashAndPassword([]byte(v.AppPasswordHash), []byte(password)) == nil {
		v.attempts.recordSuccess(remoteIP)
		return PasswordAppCorrect
	}

	v.attempts.recordFailure(remoteIP, now)
	return PasswordIncorrect
}

// Login runs the full pipeline for a POST /api/auth request: password
// verification, then — only when the password (not app-password) matched
// and a TOTP secret is configured — TOTP verification, per §4.8's "TOTP is
// required only when the result was PASSWORD_CORRECT, not APP_CORRECT."
func (v *Verifier) Login(remoteIP, password, totp string, now time.Time) LoginResult {
	switch v.VerifyPassword(remoteIP, password, now) {
	case PasswordRateLimited:
		return LoginRateLimited
	case PasswordIncorrect:
		return LoginDenied
	case PasswordAppCorrect:
		return LoginOK
	case PasswordCorrect:
		if v.TOTPSecret == "" {
			return LoginOK
		}
		if totp == "" {
			return LoginNeedsTOTP
		}
		if !VerifyTOTP(v.TOTPSecret, totp, now) {
			return LoginTOTPIncorrect
		}
		return LoginOK
	default:
		return LoginDenied
	}
}

// IsAppPassword reports whether password matches the configured app
// password rather than the primary one, so a caller that already has an
// OK LoginResult can decide the session's App flag without re-running the
// rate limiter.
func (v *Verifier) IsAppPassword(password string) bool {
	return v.AppPasswordHash != "" && bcrypt.CompareHashAndPassword([]byte(v.AppPasswordHash), []byte(password)) == nil
}

// HashPassword bcrypt-hashes a plaintext password into the form that
// Verifier's PasswordHash and AppPasswordHash fields hold.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	return string(hash), err
}
