// Package models_test provides behavior tests for the API models package.
package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/relaydns/sentinel/internal/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusResponse_JSON(t *testing.T) {
	resp := models.StatusResponse{Status: "ok"}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.StatusResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestErrorResponse_JSON(t *testing.T) {
	resp := models.ErrorResponse{
		Error: models.ErrorDetail{Key: "unauthorized", Message: "bad session", Hint: "login again"},
		Took:  0.002,
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.ErrorResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "unauthorized", decoded.Error.Key)
	assert.Equal(t, "login again", decoded.Error.Hint)
}

func TestErrorResponse_OmitsEmptyHint(t *testing.T) {
	resp := models.ErrorResponse{Error: models.ErrorDetail{Key: "bad_request", Message: "nope"}}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"hint"`)
}

func TestAuthResponse_JSON(t *testing.T) {
	resp := models.AuthResponse{Session: models.SessionInfo{
		Valid: true, SID: "abc", CSRF: "def", Validity: 300, TOTP: false,
	}}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.AuthResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.True(t, decoded.Session.Valid)
	assert.Equal(t, "abc", decoded.Session.SID)
}

func TestQueriesResponse_NullCursor(t *testing.T) {
	resp := models.QueriesResponse{Queries: []models.QueryItem{}, Cursor: nil}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cursor":null`)
}

func TestQueriesResponse_RoundTrip(t *testing.T) {
	cursor := int64(42)
	resp := models.QueriesResponse{
		Queries: []models.QueryItem{
			{ID: 1, Timestamp: 100.5, Type: "A", Status: "FORWARDED", Domain: "example.com", Client: "10.0.0.1"},
		},
		Cursor:          &cursor,
		RecordsTotal:    10,
		RecordsFiltered: 1,
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.QueriesResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	require.Len(t, decoded.Queries, 1)
	assert.Equal(t, "example.com", decoded.Queries[0].Domain)
	require.NotNil(t, decoded.Cursor)
	assert.Equal(t, int64(42), *decoded.Cursor)
}

func TestSuggestionsResponse_JSON(t *testing.T) {
	resp := models.SuggestionsResponse{
		Domains: []string{"example.com"},
		Clients: []string{"10.0.0.1"},
		Types:   []string{"A", "AAAA"},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.SuggestionsResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, decoded.Domains)
	assert.Len(t, decoded.Types, 2)
}

func TestStatsSummaryResponse_JSON(t *testing.T) {
	resp := models.StatsSummaryResponse{
		TotalQueries:   100,
		BlockedQueries: 10,
		UniqueDomains:  5,
		UniqueClients:  2,
		StatusCounts:   map[string]int64{"FORWARDED": 90, "GRAVITY": 10},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.StatsSummaryResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, int64(100), decoded.TotalQueries)
	assert.Equal(t, int64(10), decoded.StatusCounts["GRAVITY"])
}

func TestHealthResponse_JSON(t *testing.T) {
	start := time.Now()
	resp := models.HealthResponse{
		Status:        "ok",
		Uptime:        "1h30m",
		UptimeSeconds: 5400,
		StartTime:     start,
		CPU:           models.CPUStats{NumCPU: 8, UsedPercent: 25.5, IdlePercent: 74.5},
		Memory:        models.MemoryStats{TotalMB: 16384, UsedPercent: 50},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.HealthResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
	assert.Equal(t, 8, decoded.CPU.NumCPU)
}

func TestConfigResponse_JSON(t *testing.T) {
	resp := models.ConfigResponse{Items: []models.ConfigItemResponse{
		{Key: "rate_limit.count", Type: "int", Default: "1000", Value: "1000"},
		{Key: "auth.pwhash", Type: "string", Secret: true, Value: "***"},
	}}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded models.ConfigResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	require.Len(t, decoded.Items, 2)
	assert.True(t, decoded.Items[1].Secret)
}
