// Package models defines request and response types for the sentinel REST API.
// All types are JSON-serializable and include validation tags where appropriate.
package models

// StatusResponse represents a simple status response.
type StatusResponse struct {
	Status string `json:"status"`
}
