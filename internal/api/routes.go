package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/relaydns/sentinel/internal/api/handlers"
	"github.com/relaydns/sentinel/internal/api/middleware"
	"github.com/relaydns/sentinel/internal/config"
	"github.com/relaydns/sentinel/internal/session"

	_ "github.com/relaydns/sentinel/internal/api/docs" // swagger docs
)

// RegisterRoutes wires every route the management API serves: unauthenticated
// login and liveness, session-gated query-log/stats/config reads, and the
// swagger UI generated from the handler doc-comments above.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, sessions *session.Table, cfg *config.Config) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", h.Health)

	require := middleware.RequireSession(sessions, "/api", cfg.Session.LocalAPIAuth)

	auth := r.Group("/api/auth")
	{
		auth.POST("", h.PostAuth)
		auth.GET("", require, h.GetAuth)
		auth.DELETE("", require, h.DeleteAuth)
		auth.GET("/sessions", require, h.GetAuthSessions)
		auth.DELETE("/sessions/:id", require, h.DeleteAuthSession)
	}

	queries := r.Group("/api/queries", require)
	{
		queries.GET("", h.GetQueries)
		queries.GET("/suggestions", h.GetQuerySuggestions)
	}

	stats := r.Group("/api/stats", require)
	{
		stats.GET("/summary", h.GetStatsSummary)
		stats.GET("/overtime", h.GetStatsOvertime)
		stats.GET("/top_domains", h.GetStatsTopDomains)
		stats.GET("/top_clients", h.GetStatsTopClients)
		stats.GET("/upstreams", h.GetStatsUpstreams)
	}

	r.GET("/api/config", require, h.GetConfig)
}
