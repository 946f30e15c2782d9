// Package devices provides database operations for registered sync devices.
package devices

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dengxuezhao/kompanion/internal/entities"
)

var (
	ErrDuplicate = errors.New("device already exists")
	ErrNotFound  = errors.New("device not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create registers a device. The name is unique; a second registration under
// the same name fails with ErrDuplicate.
func (r *Repository) Create(ctx context.Context, device *entities.Device) error {
	err := r.db.WithContext(ctx).Create(device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (*entities.Device, error) {
	var device entities.Device
	err := r.db.WithContext(ctx).First(&device, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get device: %w", err)
	}
	return &device, nil
}

// Delete revokes a device by name.
func (r *Repository) Delete(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Delete(&entities.Device{}, "name = ?", name)
	if result.Error != nil {
		return fmt.Errorf("delete device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]entities.Device, error) {
	var devices []entities.Device
	err := r.db.WithContext(ctx).Order("name ASC").Find(&devices).Error
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}
