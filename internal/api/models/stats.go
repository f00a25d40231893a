package models

import "time"

// CPUStats contains system CPU statistics.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// MemoryStats contains system memory statistics.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// HealthResponse is the GET /health liveness response.
type HealthResponse struct {
	Status        string    `json:"status"`
	Uptime        string    `json:"uptime"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
	CPU           CPUStats  `json:"cpu"`
	Memory        MemoryStats `json:"memory"`
}

// StatsSummaryResponse is GET /api/stats/summary, sourced from core.Snapshot.
type StatsSummaryResponse struct {
	TotalQueries   int64            `json:"total_queries"`
	BlockedQueries int64            `json:"blocked_queries"`
	UniqueDomains  int              `json:"unique_domains"`
	UniqueClients  int              `json:"unique_clients"`
	StatusCounts   map[string]int64 `json:"status_counts"`
	TypeCounts     map[string]int64 `json:"type_counts"`
	ReplyCounts    map[string]int64 `json:"reply_counts"`
}

// OvertimeBucketItem is one bucket of GET /api/stats/overtime.
type OvertimeBucketItem struct {
	StartTime int64 `json:"start_time"`
	Total     int64 `json:"total"`
	Blocked   int64 `json:"blocked"`
	Cached    int64 `json:"cached"`
	Forwarded int64 `json:"forwarded"`
}

// OvertimeResponse is GET /api/stats/overtime.
type OvertimeResponse struct {
	Overtime []OvertimeBucketItem `json:"overtime"`
}

// NamedCount pairs an aggregate-table key with its query count, used by the
// top-domains/top-clients/upstreams endpoints.
type NamedCount struct {
	Name         string `json:"name"`
	Count        int64  `json:"count"`
	BlockedCount int64  `json:"blocked_count,omitempty"`
}

// TopListResponse is the shared shape of GET /api/stats/top_domains,
// /top_clients, and /upstreams.
type TopListResponse struct {
	Items []NamedCount `json:"items"`
}
