// Package fixture serves artist metadata and songs from a YAML document.
// It backs offline runs and tests in place of the network catalogs.
package fixture

import (
	"context"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/catalog"
)

// Artist is one fixture entry: the metadata record plus its songs.
type Artist struct {
	artist.Info `yaml:",inline"`
	Songs       []artist.Song      `yaml:"songs,omitempty"`
	Recordings  []artist.Recording `yaml:"recordings,omitempty"`
}

// Document is the on-disk fixture layout.
type Document struct {
	Artists []Artist `yaml:"artists"`
	// Unavailable names artists whose lookups fail with ErrCatalogUnavailable.
	Unavailable []string `yaml:"unavailable,omitempty"`
}

// Catalog is an in-memory catalog. It is safe for concurrent use.
type Catalog struct {
	byKey       map[string]Artist
	byID        map[string]Artist
	unavailable map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

// New indexes doc by lower-cased artist name.
func New(doc Document) *Catalog {
	c := &Catalog{
		byKey:       make(map[string]Artist, len(doc.Artists)),
		byID:        make(map[string]Artist, len(doc.Artists)),
		unavailable: make(map[string]bool, len(doc.Unavailable)),
		calls:       make(map[string]int),
	}
	for _, a := range doc.Artists {
		if a.Tags == nil {
			a.Tags = []artist.Tag{}
		}
		c.byKey[artist.Key(a.Name)] = a
		if a.ID != "" {
			c.byID[a.ID] = a
		}
	}
	for _, name := range doc.Unavailable {
		c.unavailable[artist.Key(name)] = true
	}
	return c
}

// Parse decodes a YAML fixture document.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse fixture")
	}
	return New(doc), nil
}

// Load reads and parses the fixture at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture %s", path)
	}
	return Parse(data)
}

// FetchArtist returns the fixture record for name.
func (c *Catalog) FetchArtist(ctx context.Context, name string) (artist.Info, error) {
	key := artist.Key(name)
	c.count("artist:" + key)
	if err := c.check(ctx, key); err != nil {
		return artist.Info{}, err
	}
	a, ok := c.byKey[key]
	if !ok {
		return artist.Info{}, catalog.NotFound(name)
	}
	return a.Info, nil
}

// FetchSongs returns the fixture songs for name, or an empty list.
func (c *Catalog) FetchSongs(ctx context.Context, name string) ([]artist.Song, error) {
	key := artist.Key(name)
	c.count("songs:" + key)
	if err := c.check(ctx, key); err != nil {
		return nil, err
	}
	a, ok := c.byKey[key]
	if !ok || a.Songs == nil {
		return []artist.Song{}, nil
	}
	return append([]artist.Song(nil), a.Songs...), nil
}

// FetchDiscography returns the fixture recordings for a catalog artist ID.
func (c *Catalog) FetchDiscography(ctx context.Context, artistID string) ([]artist.Recording, error) {
	c.count("discography:" + artistID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, ok := c.byID[artistID]
	if !ok || a.Recordings == nil {
		return []artist.Recording{}, nil
	}
	out := make([]artist.Recording, len(a.Recordings))
	for i, r := range a.Recordings {
		r.ISRCs = append([]string{}, r.ISRCs...)
		out[i] = r
	}
	return out, nil
}

// Calls returns how many times op ("artist", "songs" or "discography") was
// requested for key.
func (c *Catalog) Calls(op, key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if op != "discography" {
		key = artist.Key(key)
	}
	return c.calls[op+":"+key]
}

func (c *Catalog) count(k string) {
	c.mu.Lock()
	c.calls[k]++
	c.mu.Unlock()
}

func (c *Catalog) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.unavailable[key] {
		return catalog.Unavailable(nil, "fixture marks %q unavailable", key)
	}
	return nil
}
