package model

// CatalogEntry is one operator-declared service: "I expect <name> on <port>".
type CatalogEntry struct {
	Name string `json:"service_name"`
	Port int    `json:"port"`
	Note string `json:"note,omitempty"`
}

// SkipReason explains why a persisted catalog line was dropped during load.
type SkipReason string

const (
	SkipInvalidName  SkipReason = "invalid-name"
	SkipInvalidPort  SkipReason = "invalid-port"
	SkipInvalidValue SkipReason = "invalid-value"
)

// SkippedEntry records a catalog line that failed validation during a bulk
// load. The raw name is carried for reporting but must not be echoed into
// logs unescaped; callers log the reason and a sanitized form.
type SkippedEntry struct {
	Name   string     `json:"service_name"`
	Reason SkipReason `json:"reason"`
}
