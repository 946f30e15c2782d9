// Package storage abstracts where book and statistics bytes live.
//
// Keys are opaque path-like strings handed out by the callers; the backends
// agree on one contract: Write overwrites existing keys, Read fails with
// ErrNotFound for unknown keys and otherwise returns a local file path the
// caller can open or serve.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/dengxuezhao/kompanion/internal/config"
)

var (
	// ErrNotFound reports a read of a key that was never written.
	ErrNotFound = errors.New("storage: key not found")
)

// Storage is the backend-agnostic byte store.
type Storage interface {
	// Write persists the file at sourcePath under the destination key,
	// replacing any previous content for that key.
	Write(ctx context.Context, sourcePath, destination string) error

	// Read materializes the bytes stored under the key and returns a local
	// file path. Depending on the backend this is either the stored file
	// itself or a temporary copy.
	Read(ctx context.Context, destination string) (string, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, destination string) error
}

// New selects a backend from configuration. The database backend shares the
// gorm connection with the repositories.
func New(cfg config.BookStorage, db *gorm.DB) (Storage, error) {
	switch cfg.Type {
	case config.StorageTypeDatabase:
		if db == nil {
			return nil, errors.New("storage: database backend requires a database connection")
		}
		return NewDatabaseStorage(db), nil
	case config.StorageTypeFilesystem:
		if cfg.Path == "" {
			return nil, errors.New("storage: filesystem backend requires a path")
		}
		return NewFilesystemStorage(cfg.Path)
	case config.StorageTypeMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend type %q", cfg.Type)
	}
}

// materialize writes content to a fresh temporary file and returns its path.
// Used by backends whose bytes do not already live on disk.
func materialize(content []byte, pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("storage: create temp file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: close temp file: %w", err)
	}
	return f.Name(), nil
}
