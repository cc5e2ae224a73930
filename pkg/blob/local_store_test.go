package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestLocalStore(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	key := "snapshots/artist_info.json"
	content := `{"artist_name": "Kendrick Lamar"}`
	if err := store.Put(ctx, key, strings.NewReader(content)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, "snapshots", "artist_info.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Errorf("File was not created at expected path: %s", expectedPath)
	}

	reader, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		t.Fatalf("Failed to read from reader: %v", err)
	}
	if string(data) != content {
		t.Errorf("Get content mismatch. Got %s, want %s", string(data), content)
	}

	// Overwrite replaces content.
	if err := store.Put(ctx, key, strings.NewReader("{}")); err != nil {
		t.Fatalf("Put overwrite failed: %v", err)
	}

	key2 := "snapshots/songs.json"
	if err := store.Put(ctx, key2, strings.NewReader("[]")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	keys, err := store.List(ctx, "snapshots")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != key || keys[1] != key2 {
		t.Errorf("List returned %v, want [%s %s]", keys, key, key2)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
	if _, err := store.Get(ctx, key2); err != nil {
		t.Error("Other file should still exist")
	}
}

func TestLocalStore_ListMissingPrefix(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	keys, err := store.List(context.Background(), "nothing-here")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Expected empty list, got %v", keys)
	}
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	for _, key := range []string{"", "../outside.json", "/etc/passwd", "."} {
		if err := store.Put(ctx, key, strings.NewReader("x")); err == nil {
			t.Errorf("Expected Put(%q) to fail", key)
		}
	}
}
