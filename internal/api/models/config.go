package models

// ConfigItemResponse mirrors one config.Item for the GET /api/config dump.
type ConfigItemResponse struct {
	Key     string `json:"key"`
	Help    string `json:"help"`
	Type    string `json:"type"`
	Default string `json:"default"`
	Value   string `json:"value"`
	Restart bool   `json:"restart"`
	Secret  bool   `json:"secret"`
}

// ConfigResponse is the GET /api/config response: a flat dump of the
// read-only config registry (spec.md §9).
type ConfigResponse struct {
	Items []ConfigItemResponse `json:"items"`
}
