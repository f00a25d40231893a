package models

// SuggestionsResponse is the GET /api/queries/suggestions response:
// four dictionary arrays from the store plus the static enum dictionaries,
// grounded on spec.md §4.10.
type SuggestionsResponse struct {
	Domains   []string `json:"domain"`
	Clients   []string `json:"client"`
	Upstreams []string `json:"upstream"`
	Types     []string `json:"type"`
	Statuses  []string `json:"status"`
	Replies   []string `json:"reply"`
	DNSSEC    []string `json:"dnssec"`
}
