package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/relaydns/sentinel/internal/api/models"
	"github.com/relaydns/sentinel/internal/config"
	"github.com/relaydns/sentinel/internal/core"
	"github.com/relaydns/sentinel/internal/store"
)

// GetQueries godoc
// @Summary Paginated query log
// @Description Returns a page of the query log, newest first, per the cursor/start/length pagination algorithm
// @Tags queries
// @Produce json
// @Param domain query string false "exact domain filter"
// @Param client query string false "exact client filter"
// @Param type query string false "query type filter"
// @Param status query string false "status filter"
// @Param upstream query string false "upstream filter"
// @Param reply query string false "reply type filter"
// @Param dnssec query string false "dnssec status filter"
// @Param from query number false "epoch-second lower bound on timestamp"
// @Param until query number false "epoch-second upper bound on timestamp"
// @Param cursor query int false "largest query id to include; defaults to the newest id"
// @Param start query int false "rows to skip after the cursor, default 0"
// @Param length query int false "rows to return, default 100; -1 streams all, 0 returns none"
// @Param draw query int false "opaque client-supplied request counter, echoed back unchanged"
// @Param disk query bool false "also search the long-term on-disk database"
// @Success 200 {object} models.QueriesResponse
// @Failure 400 {object} models.ErrorResponse
// @Security SIDAuth
// @Router /queries [get]
func (h *Handler) GetQueries(c *gin.Context) {
	draw := 0
	if v := c.Query("draw"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			draw = n
		}
	}

	if h.cfg.Privacy >= config.PrivacyMaximum {
		c.JSON(http.StatusOK, models.QueriesResponse{Queries: []models.QueryItem{}, Draw: draw})
		return
	}

	filter := store.QueryFilter{
		Domain:   c.Query("domain"),
		Client:   c.Query("client"),
		Upstream: c.Query("upstream"),
	}

	if v := c.Query("type"); v != "" {
		if _, ok := core.ParseQueryType(v); !ok {
			JSONError(c, http.StatusBadRequest, "bad_request", "unknown type filter", v)
			return
		}
		filter.Type = v
	}
	if v := c.Query("status"); v != "" {
		if _, ok := core.ParseStatus(v); !ok {
			JSONError(c, http.StatusBadRequest, "bad_request", "unknown status filter", v)
			return
		}
		filter.Status = v
	}
	if v := c.Query("reply"); v != "" {
		if _, ok := core.ParseReplyType(v); !ok {
			JSONError(c, http.StatusBadRequest, "bad_request", "unknown reply filter", v)
			return
		}
		filter.Reply = v
	}
	if v := c.Query("dnssec"); v != "" {
		if _, ok := core.ParseDNSSECStatus(v); !ok {
			JSONError(c, http.StatusBadRequest, "bad_request", "unknown dnssec filter", v)
			return
		}
		filter.DNSSEC = v
	}

	if v := c.Query("from"); v != "" {
		from, err := strconv.ParseFloat(v, 64)
		if err != nil {
			JSONError(c, http.StatusBadRequest, "bad_request", "invalid from", v)
			return
		}
		filter.From = &from
	}
	if v := c.Query("until"); v != "" {
		until, err := strconv.ParseFloat(v, 64)
		if err != nil {
			JSONError(c, http.StatusBadRequest, "bad_request", "invalid until", v)
			return
		}
		filter.Until = &until
	}

	if v := c.Query("cursor"); v != "" {
		cursor, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			JSONError(c, http.StatusBadRequest, "bad_request", "invalid cursor", v)
			return
		}
		filter.Cursor = &cursor
	}
	if v := c.Query("start"); v != "" {
		start, err := strconv.Atoi(v)
		if err != nil || start < 0 {
			JSONError(c, http.StatusBadRequest, "bad_request", "invalid start", v)
			return
		}
		filter.Start = start
	}
	if v := c.Query("length"); v != "" {
		length, err := strconv.Atoi(v)
		if err != nil {
			JSONError(c, http.StatusBadRequest, "bad_request", "invalid length", v)
			return
		}
		filter.Length = &length
	}

	fromDisk := c.Query("disk") == "true" || c.Query("disk") == "1"
	filter.FromDisk = fromDisk && h.store.HasDisk()

	var page store.QueryPage
	var err error
	if filter.FromDisk {
		err = h.store.WithDisk(c.Request.Context(), func(conn *sql.Conn) error {
			page, err = h.store.ListQueries(c.Request.Context(), conn, filter)
			return err
		})
	} else {
		page, err = h.store.ListQueries(c.Request.Context(), h.store.MemDB(), filter)
	}
	if errors.Is(err, store.ErrCursorTooHigh) {
		JSONError(c, http.StatusBadRequest, "bad_request", "cursor exceeds largest known query id", "")
		return
	}
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "database_busy", "query log unavailable", "")
		return
	}

	resp := models.QueriesResponse{
		Cursor:          &page.Cursor,
		RecordsTotal:    page.RecordsTotal,
		RecordsFiltered: page.RecordsFiltered,
		Queries:         make([]models.QueryItem, 0, len(page.Queries)),
		Draw:            draw,
	}
	for _, r := range page.Queries {
		resp.Queries = append(resp.Queries, models.QueryItem{
			ID:          r.ID,
			Timestamp:   r.Timestamp,
			Type:        r.Type,
			Status:      r.Status,
			Domain:      r.Domain,
			Client:      r.Client,
			ClientName:  r.ClientName,
			Upstream:    r.Upstream,
			ReplyType:   r.ReplyType,
			ReplyTimeMs: r.ReplyTimeMs,
			DNSSEC:      r.DNSSEC,
			TTL:         int(r.TTL),
		})
	}
	c.JSON(http.StatusOK, resp)
}
