// Package catalog fetches artist metadata and song catalogs from external
// services and normalises them into artist records.
package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/cache"
	"github.com/rmax-ai/collabgraph/pkg/logger"
)

// MetadataSource looks artists up in a metadata catalog. It returns an
// ErrArtistNotFound error when the search has no match.
type MetadataSource interface {
	FetchArtist(ctx context.Context, name string) (artist.Info, error)
}

// DiscographySource lists the recordings credited to a catalog artist ID.
type DiscographySource interface {
	FetchDiscography(ctx context.Context, artistID string) ([]artist.Recording, error)
}

// SongSource lists an artist's songs with coauthor credits from a streaming
// catalog. An unknown artist yields an empty list.
type SongSource interface {
	FetchSongs(ctx context.Context, name string) ([]artist.Song, error)
}

// Catalog is the contract the expansion engine depends on.
type Catalog interface {
	FetchArtist(ctx context.Context, name string) (artist.Info, error)
	FetchSongsWithCoauthors(ctx context.Context, name string) ([]artist.Song, error)
}

// Client combines a metadata and a song source behind memo caches keyed by
// input string.
type Client struct {
	meta  MetadataSource
	songs SongSource
	log   *zap.Logger

	artists     *cache.Cache
	songLists   *cache.Cache
	discography *cache.Cache
}

// Caches holds the memo tables a Client reads through. Nil entries get a
// fresh in-memory cache.
type Caches struct {
	Artists     *cache.Cache
	Songs       *cache.Cache
	Discography *cache.Cache
}

// NewClient builds a client. Caches are owned by the caller so their
// lifetime can span one run or many.
func NewClient(meta MetadataSource, songs SongSource, caches Caches, log *zap.Logger) *Client {
	if caches.Artists == nil {
		caches.Artists = cache.New("artist_info")
	}
	if caches.Songs == nil {
		caches.Songs = cache.New("songs_with_coauthors")
	}
	if caches.Discography == nil {
		caches.Discography = cache.New("songs")
	}
	return &Client{
		meta:        meta,
		songs:       songs,
		log:         logger.OrNop(log),
		artists:     caches.Artists,
		songLists:   caches.Songs,
		discography: caches.Discography,
	}
}

// FetchArtist returns the metadata for name. A search miss resolves to the
// unknown-artist sentinel; only ErrCatalogUnavailable-style failures are
// returned as errors.
func (c *Client) FetchArtist(ctx context.Context, name string) (artist.Info, error) {
	return cache.GetOrFetch(ctx, c.artists, name, func(ctx context.Context) (artist.Info, error) {
		c.log.Debug("fetching_artist_info", zap.String("artist", name))
		info, err := c.meta.FetchArtist(ctx, name)
		if errors.Is(err, ErrArtistNotFound) {
			c.log.Info("artist_not_found", zap.String("artist", name))
			return artist.Unknown(name), nil
		}
		return info, err
	})
}

// FetchSeed is FetchArtist for the root of a traversal: a miss is returned as
// ErrArtistNotFound instead of the sentinel.
func (c *Client) FetchSeed(ctx context.Context, name string) (artist.Info, error) {
	info, err := c.FetchArtist(ctx, name)
	if err != nil {
		return artist.Info{}, err
	}
	if info.IsUnknown() {
		return artist.Info{}, NotFound(name)
	}
	return info, nil
}

// FetchSongsWithCoauthors returns the songs of name with coauthor credits.
func (c *Client) FetchSongsWithCoauthors(ctx context.Context, name string) ([]artist.Song, error) {
	return cache.GetOrFetch(ctx, c.songLists, name, func(ctx context.Context) ([]artist.Song, error) {
		c.log.Debug("fetching_songs_with_coauthors", zap.String("artist", name))
		songs, err := c.songs.FetchSongs(ctx, name)
		if err != nil {
			return nil, err
		}
		c.log.Info("fetched_songs_with_coauthors", zap.String("artist", name), zap.Int("songs", len(songs)))
		return songs, nil
	})
}

// FetchDiscography lists the recordings of a metadata-catalog artist ID. It
// fails if the metadata source cannot list discographies.
func (c *Client) FetchDiscography(ctx context.Context, artistID string) ([]artist.Recording, error) {
	src, ok := c.meta.(DiscographySource)
	if !ok {
		return nil, errors.Newf("metadata source %T does not list discographies", c.meta)
	}
	return cache.GetOrFetch(ctx, c.discography, artistID, func(ctx context.Context) ([]artist.Recording, error) {
		c.log.Debug("fetching_discography", zap.String("artist_id", artistID))
		return src.FetchDiscography(ctx, artistID)
	})
}
