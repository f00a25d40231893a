package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/relaydns/sentinel/internal/api/middleware"
	"github.com/relaydns/sentinel/internal/api/models"
	"github.com/relaydns/sentinel/internal/auth"
	"github.com/relaydns/sentinel/internal/session"
)

const sidCookieName = "sid"

// PostAuth handles POST /api/auth: password (+ optional TOTP) login, per
// §4.8's control flow. On success it mints a session and sets the sid
// cookie described in spec.md §6.
func (h *Handler) PostAuth(c *gin.Context) {
	var req models.LoginRequest
	bindErr := c.ShouldBindJSON(&req)
	if bindErr != nil || req.Password == "" {
		// HTTP Basic is the documented fallback; username must be pi-hole.
		if user, pass, ok := c.Request.BasicAuth(); ok && user == "pi-hole" {
			req.Password = pass
		} else if bindErr != nil {
			JSONError(c, http.StatusBadRequest, "bad_request", "invalid request body", "send JSON {password, totp?}")
			return
		}
	}

	now := time.Now()
	result := h.verifier.Login(c.ClientIP(), req.Password, req.TOTP, now)

	switch result {
	case auth.LoginRateLimited:
		JSONError(c, http.StatusTooManyRequests, "rate_limited", "too many login attempts", "wait before retrying")
		return
	case auth.LoginNeedsTOTP:
		JSONError(c, http.StatusUnauthorized, "unauthorized", "totp required", "submit the totp field")
		return
	case auth.LoginTOTPIncorrect:
		JSONError(c, http.StatusUnauthorized, "unauthorized", "incorrect totp", "")
		return
	case auth.LoginDenied:
		JSONError(c, http.StatusUnauthorized, "unauthorized", "incorrect password", "")
		return
	}

	app := h.verifier.IsAppPassword(req.Password)
	_, sess, err := h.sessions.Create(now, c.ClientIP(), c.Request.UserAgent(), c.Request.TLS != nil, app)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "internal_error", "no free session slots", "retry later")
		return
	}

	setSIDCookie(c, sess.SID, h.sessionTimeoutSeconds())
	c.JSON(http.StatusOK, models.AuthResponse{Session: h.sessionInfo(sess, now)})
}

// GetAuth handles GET /api/auth: reports the status of the presented
// session, per §4.7's read-only status check.
func (h *Handler) GetAuth(c *gin.Context) {
	_, sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, models.AuthResponse{Session: models.SessionInfo{Valid: false}})
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{Session: h.sessionInfo(sess, time.Now())})
}

// DeleteAuth handles DELETE /api/auth: logout. Idempotent — revoking an
// already-expired or unknown SID still reports success, per §4.7 step 6.
func (h *Handler) DeleteAuth(c *gin.Context) {
	if idx, _, ok := middleware.SessionFromContext(c); ok {
		h.sessions.Revoke(idx)
	} else if sid := c.GetHeader("X-FTL-SID"); sid != "" {
		h.sessions.RevokeSID(sid)
	} else if sid, err := c.Cookie(sidCookieName); err == nil {
		h.sessions.RevokeSID(sid)
	}

	clearSIDCookie(c)
	c.Status(http.StatusGone)
}

// GetAuthSessions handles GET /api/auth/sessions: the admin listing of
// every live session, per §4.7's session-management surface.
func (h *Handler) GetAuthSessions(c *gin.Context) {
	now := time.Now()
	indexed := h.sessions.All(now)
	out := make([]models.SessionListItem, 0, len(indexed))
	for _, is := range indexed {
		out = append(out, models.SessionListItem{
			ID:         is.Index,
			RemoteAddr: is.Session.RemoteAddr,
			UserAgent:  is.Session.UserAgent,
			LoginAt:    is.Session.LoginAt.Unix(),
			ValidUntil: is.Session.ValidUntil.Unix(),
			App:        is.Session.App,
		})
	}
	c.JSON(http.StatusOK, models.SessionsResponse{Sessions: out})
}

// DeleteAuthSession handles DELETE /api/auth/sessions/:id: revokes one
// listed session by its slot index.
func (h *Handler) DeleteAuthSession(c *gin.Context) {
	idx, err := parseIntParam(c, "id")
	if err != nil {
		JSONError(c, http.StatusBadRequest, "bad_request", "invalid session id", "")
		return
	}
	if _, ok := h.sessions.Get(idx); !ok {
		JSONError(c, http.StatusNotFound, "not_found", "no such session", "")
		return
	}
	h.sessions.Revoke(idx)
	c.Status(http.StatusNoContent)
}

func (h *Handler) sessionInfo(sess session.Session, now time.Time) models.SessionInfo {
	return models.SessionInfo{
		Valid:    sess.Valid(now),
		SID:      sess.SID,
		CSRF:     sess.CSRF,
		Validity: int64(sess.ValidUntil.Sub(now).Seconds()),
		TOTP:     h.verifier.TOTPSecret != "",
	}
}

func (h *Handler) sessionTimeoutSeconds() int {
	d, err := time.ParseDuration(h.cfg.Session.Timeout)
	if err != nil || d <= 0 {
		return 300
	}
	return int(d.Seconds())
}

func parseIntParam(c *gin.Context, name string) (int, error) {
	return strconv.Atoi(c.Param(name))
}

func setSIDCookie(c *gin.Context, sid string, maxAgeSeconds int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sidCookieName, sid, maxAgeSeconds, "/", "", false, true)
}

func clearSIDCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sidCookieName, "", -1, "/", "", false, true)
}
