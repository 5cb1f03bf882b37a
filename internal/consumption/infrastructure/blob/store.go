// Package blob stores datasets as objects addressed by slash-separated keys.
package blob

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when an object does not exist.
	ErrNotFound = errors.New("blob: not found")
	// ErrInvalidKey is returned for empty keys or keys escaping the store root.
	ErrInvalidKey = errors.New("blob: invalid key")
)

// Store reads and writes whole objects.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Key joins a folder and a file name into an object key.
func Key(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)
	if cleaned == "/" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}
