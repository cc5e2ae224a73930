// Package app wires the catalog, memo caches, engine, snapshot store and
// pipeline from a Config.
package app

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/blob"
	"github.com/rmax-ai/collabgraph/pkg/cache"
	"github.com/rmax-ai/collabgraph/pkg/cache/redis"
	"github.com/rmax-ai/collabgraph/pkg/catalog"
	"github.com/rmax-ai/collabgraph/pkg/catalog/fixture"
	"github.com/rmax-ai/collabgraph/pkg/catalog/musicbrainz"
	"github.com/rmax-ai/collabgraph/pkg/catalog/spotify"
	"github.com/rmax-ai/collabgraph/pkg/config"
	"github.com/rmax-ai/collabgraph/pkg/engine"
	"github.com/rmax-ai/collabgraph/pkg/logger"
	"github.com/rmax-ai/collabgraph/pkg/pipeline"
	"github.com/rmax-ai/collabgraph/pkg/snapshot"
)

// App holds the wired components.
type App struct {
	Config    config.Config
	Log       *zap.Logger
	Catalog   *catalog.Client
	Expander  *engine.Expander
	Snapshots *snapshot.Store
	Pipeline  *pipeline.Pipeline

	closers []func() error
}

// New wires an App. The caller must Close it.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)
	a := &App{Config: cfg, Log: log}

	backend, err := a.memoBackend(ctx)
	if err != nil {
		return nil, err
	}
	opts := []cache.Option{cache.WithLogger(log)}
	if backend != nil {
		opts = append(opts, cache.WithBackend(backend))
	}
	caches := catalog.Caches{
		Artists:     cache.New("artist_info", opts...),
		Songs:       cache.New("songs_with_coauthors", opts...),
		Discography: cache.New("songs", opts...),
	}

	var (
		meta  catalog.MetadataSource
		songs catalog.SongSource
	)
	switch cfg.Catalog.Source {
	case config.SourceFixture:
		fx, err := fixture.Load(cfg.Catalog.FixturePath)
		if err != nil {
			a.Close()
			return nil, err
		}
		meta, songs = fx, fx
		log.Info("catalog_ready", zap.String("source", "fixture"), zap.String("path", cfg.Catalog.FixturePath))
	default:
		meta = musicbrainz.NewClient(musicbrainz.Config{
			BaseURL:       cfg.MusicBrainz.BaseURL,
			UserAgent:     cfg.MusicBrainz.UserAgent,
			RatePerSecond: cfg.MusicBrainz.RatePerSecond,
		}, log)
		songs = spotify.NewClient(spotify.Config{
			BaseURL:      cfg.Spotify.BaseURL,
			TokenURL:     cfg.Spotify.TokenURL,
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
		}, log)
		if cfg.Spotify.ClientID == "" {
			log.Warn("spotify_credentials_missing")
		}
		log.Info("catalog_ready", zap.String("source", "live"))
	}

	a.Catalog = catalog.NewClient(meta, songs, caches, log)
	a.Expander = engine.NewExpander(a.Catalog, cfg.EngineOptions(), log)
	a.Snapshots = snapshot.Open(cfg.Snapshot.Dir, log)
	a.Pipeline = pipeline.New(a.Catalog, a.Snapshots, log)
	return a, nil
}

func (a *App) memoBackend(ctx context.Context) (cache.Backend, error) {
	switch {
	case a.Config.Cache.RedisAddr != "":
		b, err := redis.Dial(ctx, a.Config.Cache.RedisAddr, a.Config.Cache.RedisTTL)
		if err != nil {
			return nil, errors.Wrap(err, "connect memo cache")
		}
		a.closers = append(a.closers, b.Close)
		a.Log.Info("memo_backend_ready", zap.String("backend", "redis"), zap.String("addr", a.Config.Cache.RedisAddr))
		return b, nil
	case a.Config.Cache.Disk:
		a.Log.Info("memo_backend_ready", zap.String("backend", "disk"), zap.String("dir", a.Config.Snapshot.Dir))
		return cache.NewBlobBackend(blob.NewLocalStore(a.Config.Snapshot.Dir)), nil
	}
	return nil, nil
}

// Close releases external connections.
func (a *App) Close() error {
	var errs error
	for _, c := range a.closers {
		errs = errors.CombineErrors(errs, c())
	}
	a.closers = nil
	return errs
}
