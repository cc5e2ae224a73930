// Package spotify adapts the Spotify Web API to the catalog song-source
// contract using the client-credentials flow.
package spotify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/catalog"
	"github.com/rmax-ai/collabgraph/pkg/logger"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	source         = "spotify"
	albumPageSize  = 50
	trackBatchSize = 50
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Client talks to the Spotify Web API.
type Client struct {
	baseURL   string
	tokens    *tokenSource
	transport *catalog.Transport
	log       *zap.Logger
}

// NewClient creates a client. Zero URLs take their defaults.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}

	tr := catalog.NewTransport(source, nil)
	tr.Log = logger.OrNop(log)

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokens: &tokenSource{
			url:          cfg.TokenURL,
			clientID:     cfg.ClientID,
			clientSecret: cfg.ClientSecret,
			http:         &http.Client{Timeout: 10 * time.Second},
			now:          time.Now,
		},
		transport: tr,
		log:       logger.OrNop(log),
	}
}

// FetchSongs lists the tracks of every album and single of the best match
// for name. Coauthors are the credited artists other than the one whose
// lower-cased name equals the lower-cased request. An unknown artist yields
// an empty list.
func (c *Client) FetchSongs(ctx context.Context, name string) ([]artist.Song, error) {
	artistID, ok, err := c.searchArtist(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.log.Info("spotify_artist_not_found", zap.String("artist", name))
		return []artist.Song{}, nil
	}

	albums, err := c.artistAlbums(ctx, artistID)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(name)
	var ids []string
	songs := make(map[string]artist.Song)
	for _, albumID := range albums {
		tracks, err := c.albumTracks(ctx, albumID)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			song := artist.Song{
				Title:            t.Name,
				DurationMs:       t.DurationMs,
				Coauthors:        []artist.Coauthor{},
				AvailableMarkets: t.AvailableMarkets,
			}
			if song.AvailableMarkets == nil {
				song.AvailableMarkets = []string{}
			}
			for _, a := range t.Artists {
				if strings.ToLower(a.Name) == want {
					continue
				}
				song.Coauthors = append(song.Coauthors, artist.Coauthor{Name: a.Name, ID: a.ID})
			}
			ids = append(ids, t.ID)
			songs[t.ID] = song
		}
	}

	out := make([]artist.Song, 0, len(ids))
	for start := 0; start < len(ids); start += trackBatchSize {
		end := start + trackBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		details, err := c.tracks(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for i, d := range details {
			id := ids[start+i]
			song := songs[id]
			if d != nil {
				song.ISRC = artist.StringPtr(d.ExternalIDs.ISRC)
			}
			out = append(out, song)
		}
	}
	return out, nil
}

func (c *Client) searchArtist(ctx context.Context, name string) (string, bool, error) {
	q := url.Values{}
	q.Set("q", "artist:"+name)
	q.Set("type", "artist")
	q.Set("limit", "1")

	var resp searchResponse
	if err := c.transport.GetJSON(ctx, "search_artist", c.baseURL+"/search?"+q.Encode(), c.tokens.authorize, &resp); err != nil {
		return "", false, err
	}
	if len(resp.Artists.Items) == 0 {
		return "", false, nil
	}
	return resp.Artists.Items[0].ID, true, nil
}

func (c *Client) artistAlbums(ctx context.Context, artistID string) ([]string, error) {
	q := url.Values{}
	q.Set("include_groups", "album,single")
	q.Set("limit", "50")

	var page albumPage
	if err := c.transport.GetJSON(ctx, "artist_albums", c.baseURL+"/artists/"+url.PathEscape(artistID)+"/albums?"+q.Encode(), c.tokens.authorize, &page); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(page.Items))
	for _, a := range page.Items {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (c *Client) albumTracks(ctx context.Context, albumID string) ([]simpleTrack, error) {
	q := url.Values{}
	q.Set("limit", "50")
	next := c.baseURL + "/albums/" + url.PathEscape(albumID) + "/tracks?" + q.Encode()

	var all []simpleTrack
	for next != "" {
		var page trackPage
		if err := c.transport.GetJSON(ctx, "album_tracks", next, c.tokens.authorize, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		next = page.Next
	}
	return all, nil
}

func (c *Client) tracks(ctx context.Context, ids []string) ([]*fullTrack, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))

	var resp tracksResponse
	if err := c.transport.GetJSON(ctx, "tracks", c.baseURL+"/tracks?"+q.Encode(), c.tokens.authorize, &resp); err != nil {
		return nil, err
	}
	out := make([]*fullTrack, len(ids))
	copy(out, resp.Tracks)
	return out, nil
}
