// Package musicbrainz adapts the MusicBrainz web service (ws/2) to the
// catalog metadata contract.
package musicbrainz

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/catalog"
	"github.com/rmax-ai/collabgraph/pkg/logger"
)

const (
	DefaultBaseURL   = "https://musicbrainz.org/ws/2"
	DefaultUserAgent = "collabgraph/1.0 ( https://github.com/rmax-ai/collabgraph )"

	source    = "musicbrainz"
	pageSize  = 100
	unknownAt = "Unknown Date"
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	UserAgent string
	// RatePerSecond caps request throughput. MusicBrainz asks anonymous
	// clients for at most one request per second.
	RatePerSecond float64
}

// Client talks to MusicBrainz.
type Client struct {
	baseURL   string
	transport *catalog.Transport
	log       *zap.Logger
}

// NewClient creates a client. Zero config values take their defaults.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	tr := catalog.NewTransport(source, limiter)
	tr.Header.Set("User-Agent", cfg.UserAgent)
	tr.Log = logger.OrNop(log)

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		transport: tr,
		log:       logger.OrNop(log),
	}
}

// SearchArtist returns the best match for name.
func (c *Client) SearchArtist(ctx context.Context, name string) (searchArtist, error) {
	q := url.Values{}
	q.Set("query", fmt.Sprintf(`artist:"%s"`, strings.ReplaceAll(name, `"`, `\"`)))
	q.Set("limit", "1")
	q.Set("fmt", "json")

	var resp searchResponse
	if err := c.transport.GetJSON(ctx, "search_artist", c.baseURL+"/artist?"+q.Encode(), nil, &resp); err != nil {
		return searchArtist{}, err
	}
	if len(resp.Artists) == 0 {
		return searchArtist{}, catalog.NotFound(name)
	}
	return resp.Artists[0], nil
}

// GetArtist fetches the artist detail including area relations and tags.
func (c *Client) GetArtist(ctx context.Context, id string) (artistDetail, error) {
	q := url.Values{}
	q.Set("inc", "area-rels+tags")
	q.Set("fmt", "json")

	var resp artistDetail
	err := c.transport.GetJSON(ctx, "get_artist", c.baseURL+"/artist/"+url.PathEscape(id)+"?"+q.Encode(), nil, &resp)
	if errors.Is(err, catalog.ErrStatusNotFound) {
		return artistDetail{}, catalog.NotFound(id)
	}
	return resp, err
}

// FetchArtist searches for name and normalises the best match. Identity,
// life span, disambiguation and tags come from the search hit; the origin
// country is the area of the artist detail. A hit without tags takes the
// detail's tags.
func (c *Client) FetchArtist(ctx context.Context, name string) (artist.Info, error) {
	hit, err := c.SearchArtist(ctx, name)
	if err != nil {
		return artist.Info{}, err
	}
	detail, err := c.GetArtist(ctx, hit.ID)
	if err != nil {
		return artist.Info{}, err
	}

	info := artist.Info{
		ID:             hit.ID,
		Name:           hit.Name,
		Disambiguation: hit.Disambiguation,
		LifeSpan: artist.LifeSpan{
			Begin: artist.StringPtr(hit.LifeSpan.Begin),
			End:   artist.StringPtr(hit.LifeSpan.End),
			Ended: hit.LifeSpan.Ended,
		},
	}
	if detail.Area != nil {
		info.OriginCountry = artist.StringPtr(detail.Area.Name)
	}
	tags := hit.Tags
	if len(tags) == 0 {
		tags = detail.Tags
	}
	info.Tags = make([]artist.Tag, 0, len(tags))
	for _, t := range tags {
		info.Tags = append(info.Tags, artist.Tag{Name: t.Name, Count: t.Count})
	}
	return info, nil
}

// BrowseRecordings pages through every recording credited to artistID.
func (c *Client) BrowseRecordings(ctx context.Context, artistID string) ([]recording, error) {
	var all []recording
	for offset := 0; ; offset += pageSize {
		q := browseQuery(artistID, "isrcs", offset)
		var page recordingPage
		if err := c.transport.GetJSON(ctx, "browse_recordings", c.baseURL+"/recording?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}
		if len(page.Recordings) == 0 {
			break
		}
		all = append(all, page.Recordings...)
		if page.Count > 0 && offset+pageSize >= page.Count {
			break
		}
	}
	return all, nil
}

// BrowseReleases pages through every release credited to artistID.
func (c *Client) BrowseReleases(ctx context.Context, artistID string) ([]release, error) {
	var all []release
	for offset := 0; ; offset += pageSize {
		q := browseQuery(artistID, "recordings", offset)
		var page releasePage
		if err := c.transport.GetJSON(ctx, "browse_releases", c.baseURL+"/release?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}
		if len(page.Releases) == 0 {
			break
		}
		all = append(all, page.Releases...)
		if page.Count > 0 && offset+pageSize >= page.Count {
			break
		}
	}
	return all, nil
}

// FetchDiscography lists recordings keyed by lower-cased title, with release
// dates taken from any release containing a track of the same title. Titles
// repeated across recordings keep the last recording seen.
func (c *Client) FetchDiscography(ctx context.Context, artistID string) ([]artist.Recording, error) {
	recordings, err := c.BrowseRecordings(ctx, artistID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var songs []artist.Recording
	for _, r := range recordings {
		entry := artist.Recording{
			Title:         r.Title,
			MusicBrainzID: r.ID,
			ISRCs:         append([]string{}, r.ISRCs...),
			ReleaseDate:   unknownAt,
		}
		key := strings.ToLower(r.Title)
		if i, ok := index[key]; ok {
			songs[i] = entry
			continue
		}
		index[key] = len(songs)
		songs = append(songs, entry)
	}

	releases, err := c.BrowseReleases(ctx, artistID)
	if err != nil {
		return nil, err
	}
	for _, rel := range releases {
		date := rel.Date
		if date == "" {
			date = unknownAt
		}
		for _, m := range rel.Media {
			for _, tr := range m.Tracks {
				if i, ok := index[strings.ToLower(tr.Recording.Title)]; ok {
					songs[i].ReleaseDate = date
				}
			}
		}
	}

	c.log.Info("fetched_discography", zap.String("artist_id", artistID), zap.Int("songs", len(songs)))
	return songs, nil
}

func browseQuery(artistID, inc string, offset int) url.Values {
	q := url.Values{}
	q.Set("artist", artistID)
	q.Set("inc", inc)
	q.Set("limit", fmt.Sprint(pageSize))
	q.Set("offset", fmt.Sprint(offset))
	q.Set("fmt", "json")
	return q
}
