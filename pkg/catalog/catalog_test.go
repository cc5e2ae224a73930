package catalog

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/rmax-ai/collabgraph/pkg/artist"
)

type stubMeta struct {
	calls   map[string]int
	known   map[string]artist.Info
	failing map[string]bool
}

func (s *stubMeta) FetchArtist(ctx context.Context, name string) (artist.Info, error) {
	s.calls[name]++
	if s.failing[name] {
		return artist.Info{}, Unavailable(nil, "metadata down for %s", name)
	}
	info, ok := s.known[name]
	if !ok {
		return artist.Info{}, NotFound(name)
	}
	return info, nil
}

type stubSongs struct {
	calls int
	songs []artist.Song
}

func (s *stubSongs) FetchSongs(ctx context.Context, name string) ([]artist.Song, error) {
	s.calls++
	return s.songs, nil
}

func newStubMeta() *stubMeta {
	return &stubMeta{
		calls:   make(map[string]int),
		known:   map[string]artist.Info{"SZA": {ID: "sza-id", Name: "SZA"}},
		failing: map[string]bool{"Flaky": true},
	}
}

func TestClient_FetchArtistMemoizes(t *testing.T) {
	meta := newStubMeta()
	c := NewClient(meta, &stubSongs{}, Caches{}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := c.FetchArtist(ctx, "SZA")
		if err != nil {
			t.Fatalf("FetchArtist failed: %v", err)
		}
		if info.ID != "sza-id" {
			t.Errorf("Unexpected info %+v", info)
		}
	}
	if meta.calls["SZA"] != 1 {
		t.Errorf("Expected a single upstream call, got %d", meta.calls["SZA"])
	}
}

func TestClient_FetchArtistUnknownSentinel(t *testing.T) {
	meta := newStubMeta()
	c := NewClient(meta, &stubSongs{}, Caches{}, nil)

	info, err := c.FetchArtist(context.Background(), "Nobody")
	if err != nil {
		t.Fatalf("Expected sentinel, got error %v", err)
	}
	if !info.IsUnknown() || info.Name != "Nobody" || info.OriginCountry != nil || len(info.Tags) != 0 {
		t.Errorf("Unexpected sentinel %+v", info)
	}
	c.FetchArtist(context.Background(), "Nobody")
	if meta.calls["Nobody"] != 1 {
		t.Errorf("Expected sentinel to be memoized, got %d calls", meta.calls["Nobody"])
	}
}

func TestClient_FetchSeed(t *testing.T) {
	c := NewClient(newStubMeta(), &stubSongs{}, Caches{}, nil)
	ctx := context.Background()

	if _, err := c.FetchSeed(ctx, "Nobody"); !errors.Is(err, ErrArtistNotFound) {
		t.Errorf("Expected ErrArtistNotFound, got %v", err)
	}
	if _, err := c.FetchSeed(ctx, "Flaky"); !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("Expected ErrCatalogUnavailable, got %v", err)
	}
	if info, err := c.FetchSeed(ctx, "SZA"); err != nil || info.Name != "SZA" {
		t.Errorf("Unexpected seed result %+v, %v", info, err)
	}
}

func TestClient_UnavailableNotMemoized(t *testing.T) {
	meta := newStubMeta()
	c := NewClient(meta, &stubSongs{}, Caches{}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.FetchArtist(ctx, "Flaky"); !errors.Is(err, ErrCatalogUnavailable) {
			t.Fatalf("Expected ErrCatalogUnavailable, got %v", err)
		}
	}
	if meta.calls["Flaky"] != 2 {
		t.Errorf("Expected failures to be retried on next call, got %d calls", meta.calls["Flaky"])
	}
}

func TestClient_FetchSongsMemoizes(t *testing.T) {
	songs := &stubSongs{songs: []artist.Song{{Title: "Luther"}}}
	c := NewClient(newStubMeta(), songs, Caches{}, nil)
	ctx := context.Background()

	c.FetchSongsWithCoauthors(ctx, "SZA")
	got, err := c.FetchSongsWithCoauthors(ctx, "SZA")
	if err != nil {
		t.Fatalf("FetchSongsWithCoauthors failed: %v", err)
	}
	if len(got) != 1 || songs.calls != 1 {
		t.Errorf("Expected memoized songs, got %d songs after %d calls", len(got), songs.calls)
	}
}

func TestClient_FetchDiscographyUnsupported(t *testing.T) {
	c := NewClient(newStubMeta(), &stubSongs{}, Caches{}, nil)
	if _, err := c.FetchDiscography(context.Background(), "sza-id"); err == nil {
		t.Error("Expected error for a metadata source without discography support")
	}
}
