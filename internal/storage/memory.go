package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// MemoryStorage keeps all bytes in a map. Intended for tests; everything is
// lost on process restart. Read materializes a temporary file per call to
// satisfy the file-path contract.
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: make(map[string][]byte)}
}

func (s *MemoryStorage) Write(ctx context.Context, sourcePath, destination string) error {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("storage: read source: %w", err)
	}

	s.mu.Lock()
	s.files[destination] = content
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Read(ctx context.Context, destination string) (string, error) {
	s.mu.RLock()
	content, ok := s.files[destination]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	return materialize(content, "kompanion-mem-*")
}

func (s *MemoryStorage) Delete(ctx context.Context, destination string) error {
	s.mu.Lock()
	delete(s.files, destination)
	s.mu.Unlock()
	return nil
}

// Content reports the stored bytes for a key. Test helper.
func (s *MemoryStorage) Content(destination string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[destination]
	return content, ok
}
