package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FilesystemStorage maps keys to paths below a configured root directory.
// Read hands back the stored file directly, so serving a book costs no copy.
type FilesystemStorage struct {
	root string
}

var _ Storage = (*FilesystemStorage)(nil)

func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root dir: %w", err)
	}
	return &FilesystemStorage{root: root}, nil
}

func (s *FilesystemStorage) Write(ctx context.Context, sourcePath, destination string) error {
	full := filepath.Join(s.root, filepath.FromSlash(destination))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage: create dir: %w", err)
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("storage: open source: %w", err)
	}
	defer src.Close()

	// Write to a sibling temp file and rename, so a concurrent Read never
	// observes a half-written book.
	tmp, err := os.CreateTemp(filepath.Dir(full), ".write-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

func (s *FilesystemStorage) Read(ctx context.Context, destination string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(destination))
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("storage: stat: %w", err)
	}
	return full, nil
}

func (s *FilesystemStorage) Delete(ctx context.Context, destination string) error {
	full := filepath.Join(s.root, filepath.FromSlash(destination))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove: %w", err)
	}
	return nil
}
