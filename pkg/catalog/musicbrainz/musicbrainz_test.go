package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/rmax-ai/collabgraph/pkg/catalog"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/2/artist", func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "collabgraph-test") {
			t.Errorf("unexpected user agent %q", ua)
		}
		q := r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		if q == `artist:"Nobody"` {
			w.Write([]byte(`{"count":0,"artists":[]}`))
			return
		}
		if q == `artist:"Untagged"` {
			w.Write([]byte(`{"count":1,"artists":[{"id":"mb-1","name":"Alice","life-span":{}}]}`))
			return
		}
		w.Write([]byte(`{"count":1,"artists":[{
			"id":"mb-1","name":"Alice","disambiguation":"singer",
			"life-span":{"begin":"1990-05","ended":false},
			"tags":[{"name":"pop","count":3},{"name":"rock","count":1}]
		}]}`))
	})
	mux.HandleFunc("/ws/2/artist/mb-1", func(w http.ResponseWriter, r *http.Request) {
		if inc := r.URL.Query().Get("inc"); inc != "area-rels+tags" {
			t.Errorf("inc = %q", inc)
		}
		w.Write([]byte(`{"id":"mb-1","name":"Alice","area":{"id":"a1","name":"France"},
			"tags":[{"name":"chanson","count":2}]}`))
	})
	mux.HandleFunc("/ws/2/recording", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "0":
			w.Write([]byte(`{"recording-count":3,"recordings":[
				{"id":"r1","title":"Song A","isrcs":["ISRC1","ISRC2"]},
				{"id":"r2","title":"Song B"},
				{"id":"r3","title":"song a"}
			]}`))
		default:
			w.Write([]byte(`{"recording-count":3,"recordings":[]}`))
		}
	})
	mux.HandleFunc("/ws/2/release", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "0":
			w.Write([]byte(`{"release-count":1,"releases":[
				{"id":"rel1","date":"2001-02-03","media":[{"tracks":[{"title":"Song B","recording":{"id":"r2","title":"Song B"}}]}]}
			]}`))
		default:
			w.Write([]byte(`{"release-count":1,"releases":[]}`))
		}
	})
	return httptest.NewServer(mux)
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{BaseURL: srv.URL + "/ws/2", UserAgent: "collabgraph-test/0"}, nil)
}

func TestFetchArtist(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	info, err := newTestClient(srv).FetchArtist(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if info.ID != "mb-1" || info.Name != "Alice" {
		t.Errorf("unexpected identity %+v", info)
	}
	if info.OriginCountry == nil || *info.OriginCountry != "France" {
		t.Errorf("expected origin France, got %v", info.OriginCountry)
	}
	if info.LifeSpan.Begin == nil || *info.LifeSpan.Begin != "1990-05" {
		t.Errorf("unexpected begin %v", info.LifeSpan.Begin)
	}
	if info.LifeSpan.End != nil {
		t.Errorf("expected nil end, got %q", *info.LifeSpan.End)
	}
	if info.LifeSpan.Ended == nil || *info.LifeSpan.Ended {
		t.Errorf("expected ended=false")
	}
	if got := info.TagNames(); len(got) != 2 || got[0] != "pop" {
		t.Errorf("unexpected tags %v", got)
	}
}

func TestFetchArtist_DetailTags(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	info, err := newTestClient(srv).FetchArtist(context.Background(), "Untagged")
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if got := info.TagNames(); len(got) != 1 || got[0] != "chanson" {
		t.Errorf("expected tags from the artist detail, got %v", got)
	}
}

func TestFetchArtist_NoMatch(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	_, err := newTestClient(srv).FetchArtist(context.Background(), "Nobody")
	if !errors.Is(err, catalog.ErrArtistNotFound) {
		t.Fatalf("expected ErrArtistNotFound, got %v", err)
	}
}

func TestFetchDiscography(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	songs, err := newTestClient(srv).FetchDiscography(context.Background(), "mb-1")
	if err != nil {
		t.Fatalf("FetchDiscography failed: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs keyed by lower-cased title, got %d: %+v", len(songs), songs)
	}
	// "song a" replaces "Song A" in place.
	if songs[0].MusicBrainzID != "r3" || songs[0].ReleaseDate != "Unknown Date" {
		t.Errorf("unexpected first song %+v", songs[0])
	}
	if songs[1].Title != "Song B" || songs[1].ReleaseDate != "2001-02-03" {
		t.Errorf("unexpected second song %+v", songs[1])
	}
}

func TestFetchArtist_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchArtist(context.Background(), "Alice")
	if !errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}
