package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore keeps objects as files below a root directory.
type FileStore struct {
	fs   afero.Fs
	root string
}

// NewFileStore constructs a FileStore. A nil fs uses the OS filesystem.
func NewFileStore(fs afero.Fs, root string) *FileStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if root == "" {
		root = "."
	}
	return &FileStore{fs: fs, root: root}
}

// Get reads the object stored under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	return data, nil
}

// Put writes the object through a temporary file so readers never see a partial object.
func (s *FileStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_ = ctx
	_ = contentType
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}
