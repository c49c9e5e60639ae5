// Package mcp exposes manual retrieval to MCP clients (editor agents,
// desktop assistants) over stdio.
package mcp

import "time"

// SearchManualsInput defines the input parameters for the search_manuals tool.
type SearchManualsInput struct {
	// Query is the question to search the indexed manuals with. Unit
	// mentions ("unit 102", "#102") scope the search to those units.
	Query string `json:"query" jsonschema:"required,description=The search query; unit mentions like 'unit 102' scope results to that unit"`
}

// ManualHit is one retrieved chunk.
type ManualHit struct {
	UnitNumber string  `json:"unit_number"`
	Filename   string  `json:"filename"`
	Page       int     `json:"page"`
	Snippet    string  `json:"snippet"`
	Distance   float64 `json:"distance"`
}

// SearchManualsOutput contains the merged, capped retrieval results.
type SearchManualsOutput struct {
	Results []ManualHit `json:"results"`
	// CrossRef reports whether cross-manual search was triggered by
	// parts/spec vocabulary in the query.
	CrossRef bool   `json:"cross_ref"`
	Message  string `json:"message,omitempty"`
}

// ListManualsInput takes no parameters.
type ListManualsInput struct{}

// ManualInfo describes one registered manual.
type ManualInfo struct {
	UnitNumber string    `json:"unit_number"`
	Filename   string    `json:"filename"`
	PageCount  int       `json:"page_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ListManualsOutput lists all registered manuals.
type ListManualsOutput struct {
	Manuals []ManualInfo `json:"manuals"`
	Count   int          `json:"count"`
}

// IndexStatusInput takes no parameters.
type IndexStatusInput struct{}

// IndexStatusOutput reports which units are indexed versus registered.
type IndexStatusOutput struct {
	IndexedUnits    []string `json:"indexed_units"`
	RegisteredCount int      `json:"registered_count"`
}
