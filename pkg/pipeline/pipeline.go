// Package pipeline fetches everything known about one artist in timed
// stages, optionally saving each stage as a snapshot or replaying the stages
// from earlier snapshots.
package pipeline

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/coauthor"
	"github.com/rmax-ai/collabgraph/pkg/logger"
	"github.com/rmax-ai/collabgraph/pkg/snapshot"
)

// DefaultTopN is the number of top coauthors fetched when Options.TopN is zero.
const DefaultTopN = 5

// Catalog is the subset of catalog.Client the pipeline needs.
type Catalog interface {
	FetchSeed(ctx context.Context, name string) (artist.Info, error)
	FetchArtist(ctx context.Context, name string) (artist.Info, error)
	FetchSongsWithCoauthors(ctx context.Context, name string) ([]artist.Song, error)
	FetchDiscography(ctx context.Context, artistID string) ([]artist.Recording, error)
}

// Options selects what a run does. An empty Artist replays every stage from
// the snapshot store.
type Options struct {
	Artist string
	Save   bool
	TopN   int
}

// CoauthorEntry is the fetched metadata and songs of one top coauthor.
type CoauthorEntry struct {
	ArtistInfo artist.Info   `json:"artist_info"`
	Songs      []artist.Song `json:"songs"`
}

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Result holds the output of every stage.
type Result struct {
	ArtistInfo         artist.Info              `json:"artist_info"`
	Songs              []artist.Recording       `json:"songs"`
	SongsWithCoauthors []artist.Song            `json:"songs_with_coauthors"`
	TopCoauthors       []artist.CoauthorRank    `json:"top_coauthors"`
	CoauthorData       map[string]CoauthorEntry `json:"coauthor_data"`
	Timings            []StageTiming            `json:"timings"`
}

// Pipeline runs the stages against a catalog and a snapshot store.
type Pipeline struct {
	catalog   Catalog
	snapshots *snapshot.Store
	log       *zap.Logger
}

// New creates a pipeline. snapshots may be nil when neither saving nor
// replaying.
func New(c Catalog, snapshots *snapshot.Store, log *zap.Logger) *Pipeline {
	return &Pipeline{catalog: c, snapshots: snapshots, log: logger.OrNop(log)}
}

// Run executes the six stages in order: artist info, discography, ISRC
// preprocessing, songs with coauthors, top coauthors and coauthor data.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	live := opts.Artist != ""
	if (!live || opts.Save) && p.snapshots == nil {
		return nil, errors.New("snapshot store required to save or replay")
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	res := &Result{}

	stage := func(name string, fn func() error) error {
		start := time.Now()
		if err := fn(); err != nil {
			return errors.Wrapf(err, "stage %s", name)
		}
		d := time.Since(start)
		res.Timings = append(res.Timings, StageTiming{Stage: name, Duration: d})
		p.log.Info("stage_complete", zap.String("stage", name), zap.Duration("duration", d), zap.Bool("replay", !live))
		return nil
	}

	// fetchOrLoad runs fetch in live mode, optionally saving v, and loads v
	// from the named snapshot otherwise.
	fetchOrLoad := func(name string, v interface{}, fetch func() error) error {
		if !live {
			_, err := p.snapshots.Load(ctx, name, v)
			return err
		}
		if err := fetch(); err != nil {
			return err
		}
		if opts.Save {
			return p.snapshots.Save(ctx, name, v)
		}
		return nil
	}

	err := stage(snapshot.ArtistInfo, func() error {
		return fetchOrLoad(snapshot.ArtistInfo, &res.ArtistInfo, func() (err error) {
			res.ArtistInfo, err = p.catalog.FetchSeed(ctx, opts.Artist)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	var raw []artist.Recording
	err = stage(snapshot.Songs, func() error {
		return fetchOrLoad(snapshot.Songs, &raw, func() (err error) {
			raw, err = p.catalog.FetchDiscography(ctx, res.ArtistInfo.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	err = stage(snapshot.SongsPreprocessed, func() error {
		return fetchOrLoad(snapshot.SongsPreprocessed, &res.Songs, func() error {
			res.Songs = PreprocessISRCs(raw)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	err = stage(snapshot.SongsWithCoauthors, func() error {
		return fetchOrLoad(snapshot.SongsWithCoauthors, &res.SongsWithCoauthors, func() (err error) {
			res.SongsWithCoauthors, err = p.catalog.FetchSongsWithCoauthors(ctx, artist.Key(opts.Artist))
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	err = stage(snapshot.TopCoauthors, func() error {
		res.TopCoauthors = coauthor.RankTopN(res.SongsWithCoauthors, topN)
		if opts.Save {
			return p.snapshots.Save(ctx, snapshot.TopCoauthors, res.TopCoauthors)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(snapshot.CoauthorData, func() error {
		return fetchOrLoad(snapshot.CoauthorData, &res.CoauthorData, func() error {
			res.CoauthorData = p.fetchCoauthorData(ctx, res.TopCoauthors)
			return ctx.Err()
		})
	})
	if err != nil {
		return nil, err
	}

	if res.CoauthorData == nil {
		res.CoauthorData = map[string]CoauthorEntry{}
	}
	return res, nil
}

// fetchCoauthorData fetches info and songs for every coauthor, keyed by
// coauthor ID. Coauthors that fail are logged and left out.
func (p *Pipeline) fetchCoauthorData(ctx context.Context, coauthors []artist.CoauthorRank) map[string]CoauthorEntry {
	data := make(map[string]CoauthorEntry, len(coauthors))
	for _, c := range coauthors {
		if ctx.Err() != nil {
			break
		}
		info, err := p.catalog.FetchArtist(ctx, c.Name)
		if err != nil {
			p.log.Warn("coauthor_fetch_failed", zap.String("coauthor", c.Name), zap.String("id", c.ID), zap.Error(err))
			continue
		}
		songs, err := p.catalog.FetchSongsWithCoauthors(ctx, c.Name)
		if err != nil {
			p.log.Warn("coauthor_fetch_failed", zap.String("coauthor", c.Name), zap.String("id", c.ID), zap.Error(err))
			continue
		}
		data[c.ID] = CoauthorEntry{ArtistInfo: info, Songs: songs}
	}
	return data
}

// PreprocessISRCs keeps the first ISRC of each recording, or nil when it has
// none, and drops the full list.
func PreprocessISRCs(recordings []artist.Recording) []artist.Recording {
	out := make([]artist.Recording, len(recordings))
	for i, r := range recordings {
		r.ISRC = nil
		if len(r.ISRCs) > 0 {
			first := r.ISRCs[0]
			r.ISRC = &first
		}
		r.ISRCs = nil
		out[i] = r
	}
	return out
}
