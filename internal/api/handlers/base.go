// Package handlers implements the REST API endpoint handlers for sentinel.
//
// @title sentinel Management API
// @version 1.0
// @description REST API for querying sentinel's DNS query log, aggregate
// @description statistics, session-authenticated configuration, and health.
//
// @contact.name sentinel
// @contact.url https://github.com/relaydns/sentinel
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api
//
// @securityDefinitions.apikey SIDAuth
// @in header
// @name X-FTL-SID
package handlers

import (
	"log/slog"
	"time"

	"github.com/relaydns/sentinel/internal/auth"
	"github.com/relaydns/sentinel/internal/config"
	"github.com/relaydns/sentinel/internal/core"
	"github.com/relaydns/sentinel/internal/session"
	"github.com/relaydns/sentinel/internal/store"
)

// Handler contains the dependencies shared by every API endpoint: the
// in-memory query pipeline, its SQL mirror, the session table and login
// verifier backing authentication, and the read-only config registry.
type Handler struct {
	cfg       *config.Config
	registry  *config.Registry
	core      *core.Core
	store     *store.Store
	sessions  *session.Table
	verifier  *auth.Verifier
	logger    *slog.Logger
	startTime time.Time
}

// New creates a Handler wired to the running server's components.
func New(cfg *config.Config, registry *config.Registry, c *core.Core, st *store.Store, sessions *session.Table, verifier *auth.Verifier, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		registry:  registry,
		core:      c,
		store:     st,
		sessions:  sessions,
		verifier:  verifier,
		logger:    logger,
		startTime: time.Now(),
	}
}
