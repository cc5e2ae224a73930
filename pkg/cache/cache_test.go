package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/rmax-ai/collabgraph/pkg/blob"
)

type memBackend struct {
	data map[string][]byte
	sets int
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string][]byte)}
}

func (m *memBackend) Get(ctx context.Context, ns, key string) ([]byte, bool, error) {
	v, ok := m.data[ns+"/"+key]
	return v, ok, nil
}

func (m *memBackend) Set(ctx context.Context, ns, key string, value []byte) error {
	m.sets++
	m.data[ns+"/"+key] = value
	return nil
}

func TestGetOrFetch_Memoizes(t *testing.T) {
	c := New("artists")
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetOrFetch(ctx, c, "kendrick lamar", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
		if v != "value" {
			t.Errorf("Expected value, got %s", v)
		}
	}
	if calls != 1 {
		t.Errorf("Expected 1 fetch, got %d", calls)
	}
	if c.Len() != 1 || !c.Has("kendrick lamar") {
		t.Errorf("Expected key to be memoized")
	}
}

func TestGetOrFetch_ErrorsNotCached(t *testing.T) {
	c := New("songs")
	ctx := context.Background()
	boom := errors.New("boom")
	calls := 0

	_, err := GetOrFetch(ctx, c, "sza", func(context.Context) ([]int, error) {
		calls++
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	v, err := GetOrFetch(ctx, c, "sza", func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2}, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if len(v) != 2 || calls != 2 {
		t.Errorf("Expected retry after error, got %v after %d calls", v, calls)
	}
}

func TestGetOrFetch_TypeMismatch(t *testing.T) {
	c := New("mixed")
	ctx := context.Background()
	GetOrFetch(ctx, c, "k", func(context.Context) (int, error) { return 1, nil })

	if _, err := GetOrFetch(ctx, c, "k", func(context.Context) (string, error) { return "", nil }); err == nil {
		t.Error("Expected type mismatch error")
	}
}

func TestGetOrFetch_Backend(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()

	first := New("artists", WithBackend(backend))
	if _, err := GetOrFetch(ctx, first, "drake", func(context.Context) (map[string]int, error) {
		return map[string]int{"count": 3}, nil
	}); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if backend.sets != 1 {
		t.Fatalf("Expected backend write, got %d", backend.sets)
	}

	// A fresh cache over the same backend does not fetch again.
	second := New("artists", WithBackend(backend))
	v, err := GetOrFetch(ctx, second, "drake", func(context.Context) (map[string]int, error) {
		t.Fatal("fetch must not be called on backend hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if v["count"] != 3 {
		t.Errorf("Expected decoded backend value, got %v", v)
	}
	if backend.sets != 1 {
		t.Errorf("Backend hit must not rewrite, got %d writes", backend.sets)
	}
}

func TestBlobBackend(t *testing.T) {
	ctx := context.Background()
	b := NewBlobBackend(blob.NewLocalStore(t.TempDir()))

	if _, found, err := b.Get(ctx, "songs", "sza"); err != nil || found {
		t.Fatalf("Expected clean miss, got found=%v err=%v", found, err)
	}
	if err := b.Set(ctx, "songs", "sza", []byte(`[1]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	data, found, err := b.Get(ctx, "songs", "sza")
	if err != nil || !found || string(data) != "[1]" {
		t.Errorf("Unexpected Get result %q found=%v err=%v", data, found, err)
	}
	if _, found, _ := b.Get(ctx, "artists", "sza"); found {
		t.Error("Namespaces must not collide")
	}
}
