package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dengxuezhao/kompanion/internal/entities"
)

// DatabaseStorage keeps bytes in a blob table, one row per key. Useful when
// the deployment already requires the relational store and nothing else.
type DatabaseStorage struct {
	db *gorm.DB
}

var _ Storage = (*DatabaseStorage)(nil)

func NewDatabaseStorage(db *gorm.DB) *DatabaseStorage {
	return &DatabaseStorage{db: db}
}

func (s *DatabaseStorage) Write(ctx context.Context, sourcePath, destination string) error {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("storage: read source: %w", err)
	}

	row := entities.StoredFile{Path: destination, Content: content}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("storage: upsert blob: %w", err)
	}
	return nil
}

func (s *DatabaseStorage) Read(ctx context.Context, destination string) (string, error) {
	var row entities.StoredFile
	err := s.db.WithContext(ctx).First(&row, "path = ?", destination).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("storage: query blob: %w", err)
	}
	return materialize(row.Content, "kompanion-db-*")
}

func (s *DatabaseStorage) Delete(ctx context.Context, destination string) error {
	err := s.db.WithContext(ctx).Delete(&entities.StoredFile{}, "path = ?", destination).Error
	if err != nil {
		return fmt.Errorf("storage: delete blob: %w", err)
	}
	return nil
}
