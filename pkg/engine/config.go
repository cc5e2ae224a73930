package engine

import (
	"github.com/cockroachdb/errors"

	"github.com/rmax-ai/collabgraph/pkg/filter"
	"github.com/rmax-ai/collabgraph/pkg/graph"
)

// Options holds the presentation constants applied to every expansion.
type Options struct {
	SizeMultiplier int      `json:"size_multiplier" yaml:"size_multiplier"`
	MaxSize        int      `json:"max_size" yaml:"max_size"`
	SeedSize       int      `json:"seed_size" yaml:"seed_size"`
	Palette        []string `json:"palette" yaml:"palette"`
}

// DefaultOptions returns the stock sizing and level palette.
func DefaultOptions() Options {
	return Options{
		SizeMultiplier: 5,
		MaxSize:        40,
		SeedSize:       10,
		Palette:        append([]string(nil), graph.DefaultPalette...),
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SizeMultiplier <= 0 {
		o.SizeMultiplier = d.SizeMultiplier
	}
	if o.MaxSize <= 0 {
		o.MaxSize = d.MaxSize
	}
	if o.SeedSize <= 0 {
		o.SeedSize = d.SeedSize
	}
	if len(o.Palette) == 0 {
		o.Palette = d.Palette
	}
	return o
}

// Request describes one expansion.
type Request struct {
	Seed     string     `json:"seed"`
	MaxDepth int        `json:"max_depth"`
	Breadth  int        `json:"breadth"`
	Filters  filter.Set `json:"-"`
}

// Validate checks the request bounds. Depth 0 yields the seed alone.
func (r Request) Validate() error {
	if r.Seed == "" {
		return errors.New("seed artist is required")
	}
	if r.MaxDepth < 0 {
		return errors.Newf("max depth must not be negative, got %d", r.MaxDepth)
	}
	if r.Breadth < 0 {
		return errors.Newf("breadth must not be negative, got %d", r.Breadth)
	}
	return nil
}
