// Package blobsvc stores uploaded submission artifacts.
package blobsvc

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/veza-labs/worksim/core"
)

// FileSystemStore saves blobs under a root directory on local disk and
// addresses them by baseURL + "/" + key.
type FileSystemStore struct {
	root    string
	baseURL string
}

var _ core.BlobStore = (*FileSystemStore)(nil)

func NewFileSystemStore(conf *core.Config) *FileSystemStore {
	return &FileSystemStore{root: conf.MediaRoot, baseURL: conf.MediaBaseURL}
}

func (s FileSystemStore) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "creating blob directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating blob file")
	}
	defer f.Close()

	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing blob")
	}
	return s.baseURL + "/" + key, nil
}
