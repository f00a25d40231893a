package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/relaydns/sentinel/internal/api/models"
	"github.com/relaydns/sentinel/internal/core"
)

const suggestionsDefaultCount = 50

// GetQuerySuggestions godoc
// @Summary Filter-field autocomplete dictionaries
// @Description Returns known domains/clients/upstreams plus the static type/status/reply/dnssec enums, for populating query-log filter dropdowns
// @Tags queries
// @Produce json
// @Success 200 {object} models.SuggestionsResponse
// @Security SIDAuth
// @Router /queries/suggestions [get]
func (h *Handler) GetQuerySuggestions(c *gin.Context) {
	count := suggestionsDefaultCount
	if v := c.Query("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}

	sugg, err := h.store.QuerySuggestions(c.Request.Context(), count)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "database_busy", "suggestions unavailable", "")
		return
	}

	resp := models.SuggestionsResponse{
		Domains:   sugg.Domains,
		Clients:   sugg.Clients,
		Upstreams: sugg.Upstreams,
	}
	for _, t := range core.AllQueryTypes() {
		resp.Types = append(resp.Types, t.String())
	}
	for _, s := range core.AllStatuses() {
		resp.Statuses = append(resp.Statuses, s.String())
	}
	for _, r := range core.AllReplyTypes() {
		resp.Replies = append(resp.Replies, r.String())
	}
	for _, d := range core.AllDNSSECStatuses() {
		resp.DNSSEC = append(resp.DNSSEC, d.String())
	}

	c.JSON(http.StatusOK, resp)
}
