package client

import (
	"fmt"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/graph"
)

// ExpandRequest describes a graph expansion.
type ExpandRequest struct {
	// Seed is the required root artist.
	Seed string
	// MaxDepth bounds the traversal. Nil uses the server default.
	MaxDepth *int
	// Breadth is the number of coauthors kept per artist. Nil uses the server default.
	Breadth *int
	// Filters maps filter kinds ("genre", "country", "started_after", "ended") to values.
	Filters map[string]string
	// Preset names a server-side filter preset.
	Preset string
}

// Int returns a pointer to v, for the optional ExpandRequest fields.
func Int(v int) *int { return &v }

// Skipped is a candidate left out of an expansion.
type Skipped struct {
	Name   string `json:"name"`
	Level  int    `json:"level"`
	Reason string `json:"reason"`
}

// GraphResult is the decoded response of an expansion.
type GraphResult struct {
	Seed     string       `json:"seed"`
	SeedInfo artist.Info  `json:"seed_info"`
	MaxDepth int          `json:"max_depth"`
	Breadth  int          `json:"breadth"`
	Filters  string       `json:"filters"`
	Graph    *graph.Graph `json:"graph"`
	Skipped  []Skipped    `json:"skipped"`
}

// SongsResult is the response of Songs.
type SongsResult struct {
	Artist string        `json:"artist"`
	Total  int           `json:"total"`
	Songs  []artist.Song `json:"songs"`
}

// FilterKind describes one filter the server accepts.
type FilterKind struct {
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	Placeholder string   `json:"placeholder"`
	Options     []string `json:"options,omitempty"`
}

// FiltersResult is the response of Filters.
type FiltersResult struct {
	Filters []FilterKind                 `json:"filters"`
	Presets map[string]map[string]string `json:"presets,omitempty"`
}

// Status represents the health check response.
type Status struct {
	// Status is the health status string (e.g. "ok").
	Status string `json:"status"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("collabgraph: %d %s: %s", e.StatusCode, e.Code, e.Detail)
	}
	return fmt.Sprintf("collabgraph: %d %s", e.StatusCode, e.Code)
}
