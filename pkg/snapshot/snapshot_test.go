package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/blob"
	"github.com/rmax-ai/collabgraph/pkg/cache"
)

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, nil)
	ctx := context.Background()

	info := artist.Info{ID: "mb-1", Name: "Beyoncé", OriginCountry: artist.StringPtr("United States"), Tags: []artist.Tag{}}
	if err := s.Save(ctx, ArtistInfo, info); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "artist_info.json"))
	if err != nil {
		t.Fatalf("read snapshot file: %v", err)
	}
	if !strings.Contains(string(raw), "Beyoncé") {
		t.Errorf("expected non-ASCII text kept verbatim, got %s", raw)
	}
	if !strings.Contains(string(raw), "\n    \"artist_id\"") {
		t.Errorf("expected four-space indentation, got %s", raw)
	}

	var got artist.Info
	found, err := s.Load(ctx, ArtistInfo, &got)
	if err != nil || !found {
		t.Fatalf("Load failed: found=%v err=%v", found, err)
	}
	if got.Name != "Beyoncé" || got.OriginCountry == nil || *got.OriginCountry != "United States" {
		t.Errorf("unexpected round trip %+v", got)
	}
}

func TestLoad_Missing(t *testing.T) {
	s := Open(t.TempDir(), nil)
	var v map[string]interface{}
	found, err := s.Load(context.Background(), CoauthorData, &v)
	if err != nil {
		t.Fatalf("missing snapshot should not be an error: %v", err)
	}
	if found || v != nil {
		t.Errorf("expected found=false and untouched value, got %v %v", found, v)
	}
}

func TestList_IgnoresNestedKeys(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, nil)
	ctx := context.Background()

	for _, name := range []string{Songs, TopCoauthors} {
		if err := s.Save(ctx, name, []string{}); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
	}
	// Memo cache entries share the directory.
	backend := cache.NewBlobBackend(blob.NewLocalStore(dir))
	if err := backend.Set(ctx, "artist_info", "x", []byte(`{}`)); err != nil {
		t.Fatalf("backend Set failed: %v", err)
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 || names[0] != Songs || names[1] != TopCoauthors {
		t.Errorf("unexpected names %v", names)
	}
}

func TestSave_InvalidName(t *testing.T) {
	s := Open(t.TempDir(), nil)
	if err := s.Save(context.Background(), "../escape", 1); err == nil {
		t.Fatal("expected error for name with a path separator")
	}
}
