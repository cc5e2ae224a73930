// Package snapshot persists named fetch-stage results as pretty-printed JSON
// documents, one file per name.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/blob"
	"github.com/rmax-ai/collabgraph/pkg/logger"
)

// Snapshot names written by the fetch pipeline.
const (
	ArtistInfo         = "artist_info"
	Songs              = "songs"
	SongsPreprocessed  = "songs_preprocessed"
	SongsWithCoauthors = "songs_with_coauthors"
	TopCoauthors       = "top_coauthors"
	CoauthorData       = "coauthor_data"
	Graph              = "graph"
)

const ext = ".json"

// Store reads and writes snapshots in a blob store.
type Store struct {
	blobs blob.Store
	log   *zap.Logger
}

// New creates a snapshot store over blobs.
func New(blobs blob.Store, log *zap.Logger) *Store {
	return &Store{blobs: blobs, log: logger.OrNop(log)}
}

// Open creates a snapshot store rooted at dir on the local filesystem.
func Open(dir string, log *zap.Logger) *Store {
	return New(blob.NewLocalStore(dir), log)
}

func key(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", errors.Newf("invalid snapshot name %q", name)
	}
	return name + ext, nil
}

// Save writes v under name, indented by four spaces with non-ASCII text kept
// verbatim.
func (s *Store) Save(ctx context.Context, name string, v interface{}) error {
	k, err := key(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return errors.Wrapf(err, "encode snapshot %s", name)
	}
	if err := s.blobs.Put(ctx, k, &buf); err != nil {
		return errors.Wrapf(err, "save snapshot %s", name)
	}
	s.log.Debug("snapshot_saved", zap.String("name", name))
	return nil
}

// Load decodes the snapshot name into v. A missing snapshot is logged and
// reported with found=false; v is left untouched.
func (s *Store) Load(ctx context.Context, name string, v interface{}) (bool, error) {
	k, err := key(name)
	if err != nil {
		return false, err
	}
	rc, err := s.blobs.Get(ctx, k)
	if errors.Is(err, blob.ErrNotFound) {
		s.log.Info("snapshot_not_found", zap.String("name", name))
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "open snapshot %s", name)
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return false, errors.Wrapf(err, "decode snapshot %s", name)
	}
	return true, nil
}

// List returns the names of the stored snapshots, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys, err := s.blobs.List(ctx, "")
	if err != nil {
		return nil, errors.Wrap(err, "list snapshots")
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.Contains(k, "/") || path.Ext(k) != ext {
			continue
		}
		names = append(names, strings.TrimSuffix(k, ext))
	}
	return names, nil
}
