// Package fs stores docgap blobs as files on the local filesystem.
package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docgap"
)

var _ docgap.ObjectStore = (*ObjectStore)(nil)

// ObjectStore keeps each key in its own file below a root directory.
// Writes go to a temporary file that is renamed into place, so readers
// never see a partially written blob.
type ObjectStore struct {
	root string
}

// NewObjectStore creates an ObjectStore rooted at dir.
func NewObjectStore(dir string) *ObjectStore {
	return &ObjectStore{root: dir}
}

// Get reads the blob stored under key.
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, docgap.Errorf(docgap.ENOTFOUND, "key %q not found", key)
	}
	return data, err
}

// Put atomically replaces the blob stored under key.
func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. Missing keys are ignored.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return err
	}
	return nil
}

// path maps a slash-separated key to a file below root, rejecting keys that
// would escape it.
func (s *ObjectStore) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || !iofs.ValidPath(key) {
		return "", docgap.Errorf(docgap.EINVALID, "invalid key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}
