package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/relaydns/sentinel/internal/api/models"
	"github.com/relaydns/sentinel/internal/config"
	"github.com/relaydns/sentinel/internal/core"
)

// GetStatsSummary godoc
// @Summary Overview counters
// @Description Returns total/blocked query counts and per-status/type/reply breakdowns
// @Tags stats
// @Produce json
// @Success 200 {object} models.StatsSummaryResponse
// @Security SIDAuth
// @Router /stats/summary [get]
func (h *Handler) GetStatsSummary(c *gin.Context) {
	snap := h.core.Stats()

	resp := models.StatsSummaryResponse{
		TotalQueries:   snap.TotalQueries,
		BlockedQueries: snap.BlockedQueries,
		UniqueDomains:  snap.UniqueDomains,
		UniqueClients:  snap.UniqueClients,
		StatusCounts:   make(map[string]int64, core.StatusCount),
		TypeCounts:     make(map[string]int64, core.TypeCount),
		ReplyCounts:    make(map[string]int64, core.ReplyCount),
	}
	for _, s := range core.AllStatuses() {
		resp.StatusCounts[s.String()] = snap.Counters.Status[s]
	}
	for _, qt := range core.AllQueryTypes() {
		resp.TypeCounts[qt.String()] = snap.Counters.QueryType[qt]
	}
	for _, r := range core.AllReplyTypes() {
		resp.ReplyCounts[r.String()] = snap.Counters.Reply[r]
	}

	c.JSON(http.StatusOK, resp)
}

// GetStatsOvertime godoc
// @Summary Time-bucketed query volume
// @Description Returns every live 10-minute overtime bucket, oldest first
// @Tags stats
// @Produce json
// @Success 200 {object} models.OvertimeResponse
// @Security SIDAuth
// @Router /stats/overtime [get]
func (h *Handler) GetStatsOvertime(c *gin.Context) {
	var buckets []core.Bucket
	h.core.View(func(cc *core.Core) {
		buckets = cc.Overtime.Snapshot()
	})

	resp := models.OvertimeResponse{Overtime: make([]models.OvertimeBucketItem, 0, len(buckets))}
	for _, b := range buckets {
		resp.Overtime = append(resp.Overtime, models.OvertimeBucketItem{
			StartTime: b.StartTime,
			Total:     b.Total,
			Blocked:   b.Blocked,
			Cached:    b.Cached,
			Forwarded: b.Forwarded,
		})
	}
	c.JSON(http.StatusOK, resp)
}

const topListDefaultLimit = 25

// GetStatsTopDomains godoc
// @Summary Most-queried domains
// @Description Returns the top domains by query count, descending
// @Tags stats
// @Produce json
// @Success 200 {object} models.TopListResponse
// @Security SIDAuth
// @Router /stats/top_domains [get]
func (h *Handler) GetStatsTopDomains(c *gin.Context) {
	if h.cfg.Privacy >= config.PrivacyHideDomains {
		c.JSON(http.StatusOK, models.TopListResponse{Items: []models.NamedCount{}})
		return
	}

	var items []models.NamedCount
	h.core.View(func(cc *core.Core) {
		for _, d := range cc.Domains.All() {
			items = append(items, models.NamedCount{
				Name:         cc.Interner.Get(d.NameID),
				Count:        d.Count,
				BlockedCount: d.BlockedCount,
			})
		}
	})
	c.JSON(http.StatusOK, models.TopListResponse{Items: topN(items, limitParam(c))})
}

// GetStatsTopClients godoc
// @Summary Most-active clients
// @Description Returns the top clients by query count, descending
// @Tags stats
// @Produce json
// @Success 200 {object} models.TopListResponse
// @Security SIDAuth
// @Router /stats/top_clients [get]
func (h *Handler) GetStatsTopClients(c *gin.Context) {
	if h.cfg.Privacy >= config.PrivacyHideDomainsClients {
		c.JSON(http.StatusOK, models.TopListResponse{Items: []models.NamedCount{}})
		return
	}

	var items []models.NamedCount
	h.core.View(func(cc *core.Core) {
		for _, cl := range cc.Clients.All() {
			name := cc.Interner.Get(cl.IPID)
			items = append(items, models.NamedCount{
				Name:         name,
				Count:        cl.Count,
				BlockedCount: cl.BlockedCount,
			})
		}
	})
	c.JSON(http.StatusOK, models.TopListResponse{Items: topN(items, limitParam(c))})
}

// GetStatsUpstreams godoc
// @Summary Upstream usage
// @Description Returns the top upstream servers by query count, descending
// @Tags stats
// @Produce json
// @Success 200 {object} models.TopListResponse
// @Security SIDAuth
// @Router /stats/upstreams [get]
func (h *Handler) GetStatsUpstreams(c *gin.Context) {
	var items []models.NamedCount
	h.core.View(func(cc *core.Core) {
		for _, u := range cc.Upstreams.All() {
			items = append(items, models.NamedCount{
				Name:  cc.Interner.Get(u.IPID),
				Count: u.Count,
			})
		}
	})
	c.JSON(http.StatusOK, models.TopListResponse{Items: topN(items, limitParam(c))})
}

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return topListDefaultLimit
	}
	return n
}

// topN sorts items by Count descending and returns at most limit of them.
func topN(items []models.NamedCount, limit int) []models.NamedCount {
	sort.Slice(items, func(i, j int) bool { return items[i].Count > items[j].Count })
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []models.NamedCount{}
	}
	return items
}
