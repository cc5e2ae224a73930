package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/cache"
)

func setup(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *Backend) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewBackend(client, ttl)
}

func TestBackend_GetSet(t *testing.T) {
	_, b := setup(t, 0)
	ctx := context.Background()

	if _, found, err := b.Get(ctx, "artists", "sza"); err != nil || found {
		t.Fatalf("Expected miss, got found=%v err=%v", found, err)
	}
	if err := b.Set(ctx, "artists", "sza", []byte(`{"artist_name":"SZA"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	data, found, err := b.Get(ctx, "artists", "sza")
	if err != nil || !found {
		t.Fatalf("Expected hit, got found=%v err=%v", found, err)
	}
	if string(data) != `{"artist_name":"SZA"}` {
		t.Errorf("Unexpected payload %s", data)
	}
}

func TestBackend_TTL(t *testing.T) {
	mr, b := setup(t, time.Minute)
	ctx := context.Background()

	if err := b.Set(ctx, "songs", "drake", []byte("[]")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, found, _ := b.Get(ctx, "songs", "drake"); found {
		t.Error("Expected entry to expire")
	}
}

func TestBackend_WithCache(t *testing.T) {
	_, b := setup(t, 0)
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (artist.Info, error) {
		calls++
		return artist.Info{ID: "1", Name: "SZA", OriginCountry: artist.StringPtr("United States")}, nil
	}

	if _, err := cache.GetOrFetch(ctx, cache.New("artists", cache.WithBackend(b)), "sza", fetch); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	info, err := cache.GetOrFetch(ctx, cache.New("artists", cache.WithBackend(b)), "sza", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected second run to be served by redis, got %d fetches", calls)
	}
	if artist.Deref(info.OriginCountry, "") != "United States" {
		t.Errorf("Unexpected decoded info %+v", info)
	}
}

func TestDial_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Dial(ctx, "127.0.0.1:1", 0); err == nil {
		t.Error("Expected dial to fail")
	}
}
