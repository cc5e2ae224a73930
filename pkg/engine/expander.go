// Package engine expands a seed artist into a collaboration graph by
// breadth-first traversal over ranked coauthors.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/catalog"
	"github.com/rmax-ai/collabgraph/pkg/coauthor"
	"github.com/rmax-ai/collabgraph/pkg/graph"
	"github.com/rmax-ai/collabgraph/pkg/logger"
)

// Skip reasons recorded in Result.Skipped.
const (
	ReasonFiltered    = "filtered"
	ReasonFetchFailed = "fetch_failed"
	ReasonSongsFailed = "songs_fetch_failed"
	ReasonEmptyName   = "empty_name"
)

const (
	decisionAdmitted    = "admitted"
	decisionRejected    = "rejected"
	decisionFetchFailed = "fetch_failed"

	outcomeComplete   = "complete"
	outcomeCanceled   = "canceled"
	outcomeSeedFailed = "seed_failed"
)

// SkippedCandidate is a coauthor (or an admitted artist whose songs could not
// be listed) left out of the traversal.
type SkippedCandidate struct {
	Name   string `json:"name"`
	Level  int    `json:"level"`
	Reason string `json:"reason"`
}

// Result is the output of an expansion.
type Result struct {
	SeedInfo artist.Info        `json:"seed_info"`
	Graph    *graph.Graph       `json:"graph"`
	Skipped  []SkippedCandidate `json:"skipped"`
}

// Expander runs expansions against a catalog.
type Expander struct {
	catalog catalog.Catalog
	opts    Options
	log     *zap.Logger
}

// NewExpander creates an expander. Zero option fields take their defaults.
func NewExpander(c catalog.Catalog, opts Options, log *zap.Logger) *Expander {
	return &Expander{
		catalog: c,
		opts:    opts.withDefaults(),
		log:     logger.OrNop(log),
	}
}

// Options returns the effective options.
func (e *Expander) Options() Options {
	return e.opts
}

type queued struct {
	name  string
	level int
}

// Expand builds the collaboration graph around req.Seed.
//
// Levels are assigned at first discovery and never revised. Artists at
// req.MaxDepth are added but not expanded. A candidate that cannot be fetched
// is skipped; a seed that cannot be fetched, or whose songs cannot be listed,
// aborts the run. When ctx is canceled the graph built so far is returned
// together with ctx.Err().
func (e *Expander) Expand(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	seedKey := artist.Key(req.Seed)
	log := e.log.With(zap.String("seed", seedKey))
	log.Info("expansion_started",
		zap.Int("max_depth", req.MaxDepth),
		zap.Int("breadth", req.Breadth),
		zap.String("filters", req.Filters.String()),
	)

	seedInfo, err := e.catalog.FetchArtist(ctx, req.Seed)
	if err == nil && seedInfo.IsUnknown() {
		err = catalog.NotFound(req.Seed)
	}
	if err != nil {
		ExpansionTotal.WithLabelValues(outcomeSeedFailed).Inc()
		log.Warn("seed_fetch_failed", zap.Error(err))
		return nil, errors.Wrapf(err, "fetch seed %q", req.Seed)
	}

	g := graph.New()
	g.AddNode(graph.Node{
		ID:      seedKey,
		Label:   seedInfo.Name,
		Level:   0,
		Color:   graph.ColorForLevel(e.opts.Palette, 0),
		Size:    e.opts.SeedSize,
		Tooltip: Tooltip(seedKey, seedInfo),
	})
	res := &Result{SeedInfo: seedInfo, Graph: g, Skipped: []SkippedCandidate{}}

	visited := map[string]bool{seedKey: true}
	queue := []queued{{name: seedKey, level: 0}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return e.canceled(log, res, err)
		}
		cur := queue[0]
		queue = queue[1:]
		if cur.level >= req.MaxDepth {
			continue
		}

		songs, err := e.catalog.FetchSongsWithCoauthors(ctx, cur.name)
		if err != nil {
			if ctx.Err() != nil {
				return e.canceled(log, res, ctx.Err())
			}
			if cur.name == seedKey {
				ExpansionTotal.WithLabelValues(outcomeSeedFailed).Inc()
				log.Warn("seed_songs_fetch_failed", zap.Error(err))
				return nil, errors.Wrapf(err, "fetch songs of seed %q", req.Seed)
			}
			log.Warn("songs_fetch_failed", zap.String("artist", cur.name), zap.Error(err))
			res.Skipped = append(res.Skipped, SkippedCandidate{Name: cur.name, Level: cur.level, Reason: ReasonSongsFailed})
			continue
		}

		for _, cand := range coauthor.RankTopN(songs, req.Breadth) {
			key := artist.Key(cand.Name)
			if key == "" {
				res.Skipped = append(res.Skipped, SkippedCandidate{Name: cand.Name, Level: cur.level + 1, Reason: ReasonEmptyName})
				continue
			}

			info, err := e.catalog.FetchArtist(ctx, cand.Name)
			if err != nil {
				if ctx.Err() != nil {
					return e.canceled(log, res, ctx.Err())
				}
				CandidatesTotal.WithLabelValues(decisionFetchFailed).Inc()
				log.Warn("candidate_skipped",
					zap.String("artist", cur.name),
					zap.String("candidate", cand.Name),
					zap.String("reason", ReasonFetchFailed),
					zap.Error(err),
				)
				res.Skipped = append(res.Skipped, SkippedCandidate{Name: cand.Name, Level: cur.level + 1, Reason: ReasonFetchFailed})
				continue
			}

			if !req.Filters.Evaluate(info) {
				CandidatesTotal.WithLabelValues(decisionRejected).Inc()
				log.Debug("candidate_skipped",
					zap.String("artist", cur.name),
					zap.String("candidate", cand.Name),
					zap.String("reason", ReasonFiltered),
				)
				res.Skipped = append(res.Skipped, SkippedCandidate{Name: cand.Name, Level: cur.level + 1, Reason: ReasonFiltered})
				continue
			}
			CandidatesTotal.WithLabelValues(decisionAdmitted).Inc()

			if !visited[key] {
				g.AddNode(graph.Node{
					ID:      key,
					Label:   cand.Name,
					Level:   cur.level + 1,
					Color:   graph.ColorForLevel(e.opts.Palette, cur.level+1),
					Size:    e.size(cand.Count),
					Tooltip: Tooltip(key, info),
				})
				visited[key] = true
				queue = append(queue, queued{name: key, level: cur.level + 1})
			}

			if key != seedKey && key != cur.name {
				err := g.SetEdge(graph.Edge{
					From:   cur.name,
					To:     key,
					Weight: cand.Count,
					Label:  EdgeLabel(cand.Count),
				})
				if err != nil {
					log.Error("edge_rejected", zap.String("from", cur.name), zap.String("to", key), zap.Error(err))
				}
			}
		}
	}

	ExpansionTotal.WithLabelValues(outcomeComplete).Inc()
	ExpansionNodes.Observe(float64(g.NodeCount()))
	log.Info("expansion_complete",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("skipped", len(res.Skipped)),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (e *Expander) canceled(log *zap.Logger, res *Result, err error) (*Result, error) {
	ExpansionTotal.WithLabelValues(outcomeCanceled).Inc()
	ExpansionNodes.Observe(float64(res.Graph.NodeCount()))
	log.Info("expansion_canceled", zap.Int("nodes", res.Graph.NodeCount()), zap.Error(err))
	return res, err
}

func (e *Expander) size(count int) int {
	s := count * e.opts.SizeMultiplier
	if s > e.opts.MaxSize {
		return e.opts.MaxSize
	}
	return s
}

// Tooltip renders the hover text of a node.
func Tooltip(name string, info artist.Info) string {
	return fmt.Sprintf("%s\nOrigin: %s\nLife Span: %s - %s",
		name,
		artist.Deref(info.OriginCountry, "N/A"),
		artist.Deref(info.LifeSpan.Begin, "Unknown"),
		artist.Deref(info.LifeSpan.End, "Present"),
	)
}

// EdgeLabel renders the collaboration count shown on an edge.
func EdgeLabel(count int) string {
	return fmt.Sprintf("%d co.", count)
}
