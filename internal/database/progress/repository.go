// Package progress provides database operations for the append-only reading
// progress history.
package progress

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dengxuezhao/kompanion/internal/entities"
)

// Repository handles progress persistence. Rows are never updated or deleted;
// the newest timestamp wins at read time.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Store appends one progress record. The row id is assigned here.
func (r *Repository) Store(ctx context.Context, p *entities.Progress) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("store progress: %w", err)
	}
	return nil
}

// History returns up to limit records for the document, newest first.
func (r *Repository) History(ctx context.Context, document string, limit int) ([]entities.Progress, error) {
	var items []entities.Progress
	err := r.db.WithContext(ctx).
		Where("document = ?", document).
		Order("timestamp DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("progress history: %w", err)
	}
	return items, nil
}

// Latest returns the record with the greatest timestamp, or nil when the
// document has no history.
func (r *Repository) Latest(ctx context.Context, document string) (*entities.Progress, error) {
	history, err := r.History(ctx, document, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[0], nil
}
