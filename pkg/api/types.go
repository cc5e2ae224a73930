package api

import (
	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/engine"
	"github.com/rmax-ai/collabgraph/pkg/filter"
	"github.com/rmax-ai/collabgraph/pkg/graph"
)

// GraphResponse matches the JSON response of GET /v1/graph
type GraphResponse struct {
	Seed     string                    `json:"seed"`
	SeedInfo artist.Info               `json:"seed_info"`
	MaxDepth int                       `json:"max_depth"`
	Breadth  int                       `json:"breadth"`
	Filters  string                    `json:"filters"`
	Graph    graph.Snapshot            `json:"graph"`
	Skipped  []engine.SkippedCandidate `json:"skipped"`
}

// SongsResponse matches the response of GET /v1/songs
type SongsResponse struct {
	Artist string        `json:"artist"`
	Total  int           `json:"total"`
	Songs  []artist.Song `json:"songs"`
}

// CoauthorsResponse matches the response of GET /v1/coauthors
type CoauthorsResponse struct {
	Artist    string                `json:"artist"`
	Coauthors []artist.CoauthorRank `json:"coauthors"`
}

// FiltersResponse matches the response of GET /v1/filters
type FiltersResponse struct {
	Filters []filter.Descriptor          `json:"filters"`
	Presets map[string]map[string]string `json:"presets,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
