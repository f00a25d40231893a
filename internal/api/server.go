// Package api wires the sentinel management REST API: session-authenticated
// query-log, suggestions, stats, and config endpoints over the in-memory
// query pipeline and its SQL mirror.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/relaydns/sentinel/internal/api/handlers"
	"github.com/relaydns/sentinel/internal/api/middleware"
	"github.com/relaydns/sentinel/internal/auth"
	"github.com/relaydns/sentinel/internal/config"
	"github.com/relaydns/sentinel/internal/core"
	"github.com/relaydns/sentinel/internal/session"
	"github.com/relaydns/sentinel/internal/store"
)

// Server is the management REST API server.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds a Server wired to every component the API surface reads from.
func New(cfg *config.Config, registry *config.Registry, c *core.Core, st *store.Store, sessions *session.Table, verifier *auth.Verifier, logger *slog.Logger) *Server {
	if cfg == nil {
		panic("api.New: cfg is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := handlers.New(cfg, registry, c, st, sessions, verifier, logger)
	RegisterRoutes(engine, h, sessions, cfg)

	addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{cfg: cfg, logger: logger, engine: engine, httpServer: httpServer}
}

func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
