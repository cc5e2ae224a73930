package blob

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// LocalStore implements Store on a directory of the local filesystem.
type LocalStore struct {
	rootPath string
}

// NewLocalStore creates a LocalStore rooted at rootPath. The directory is
// created lazily on first write.
func NewLocalStore(rootPath string) *LocalStore {
	return &LocalStore{rootPath: rootPath}
}

// Root returns the directory backing the store.
func (s *LocalStore) Root() string {
	return s.rootPath
}

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", errors.Newf("invalid blob key %q", key)
	}
	return filepath.Join(s.rootPath, clean), nil
}

// Put writes content atomically via a temp file and rename in the target
// directory.
func (s *LocalStore) Put(ctx context.Context, key string, reader io.Reader) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tempName := tempFile.Name()
	defer os.Remove(tempName)

	if _, err := io.Copy(tempFile, reader); err != nil {
		tempFile.Close()
		return errors.Wrapf(err, "write blob %s", key)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return errors.Wrapf(err, "sync blob %s", key)
	}
	if err := tempFile.Close(); err != nil {
		return errors.Wrapf(err, "close blob %s", key)
	}

	if err := os.Rename(tempName, fullPath); err != nil {
		return errors.Wrapf(err, "rename blob into %s", fullPath)
	}
	return nil
}

// Get opens the blob stored under key.
func (s *LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "blob %s", key)
		}
		return nil, errors.Wrapf(err, "open blob %s", key)
	}
	return file, nil
}

// List returns the sorted keys under prefix. A missing prefix yields an empty
// list. Temp files from interrupted writes are skipped.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	root := filepath.Join(s.rootPath, filepath.FromSlash(prefix))

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.rootPath, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, "list blobs under %s", prefix)
	}

	sort.Strings(keys)
	return keys, nil
}

// Delete removes a blob.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "blob %s", key)
		}
		return errors.Wrapf(err, "delete blob %s", key)
	}
	return nil
}
