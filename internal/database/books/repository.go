// Package books provides database operations for the book catalog.
package books

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dengxuezhao/kompanion/internal/entities"
)

var (
	// ErrDuplicate reports a unique-constraint collision, either on the book
	// id or on the content digest. The constraint check in the database is
	// authoritative; callers racing on the same digest both end up here.
	ErrDuplicate = errors.New("book already exists")

	// ErrNotFound reports a lookup of an absent book.
	ErrNotFound = errors.New("book not found")
)

// sortColumns is the allow-list for List. Both the bare spelling and the
// column spelling of the timestamp fields are accepted.
var sortColumns = map[string]string{
	"title":      "title",
	"author":     "author",
	"publisher":  "publisher",
	"year":       "year",
	"isbn":       "isbn",
	"created":    "created_at",
	"created_at": "created_at",
	"updated":    "updated_at",
	"updated_at": "updated_at",
}

// Repository handles book catalog persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Store inserts a new book. Returns ErrDuplicate when the id or the document
// digest is already taken.
func (r *Repository) Store(ctx context.Context, book *entities.Book) error {
	err := r.db.WithContext(ctx).Create(book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("store book: %w", err)
	}
	return nil
}

// Update rewrites the mutable metadata fields of an existing book.
func (r *Repository) Update(ctx context.Context, book *entities.Book) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ?", book.ID).
		Updates(map[string]any{
			"title":      book.Title,
			"author":     book.Author,
			"publisher":  book.Publisher,
			"year":       book.Year,
			"isbn":       book.ISBN,
			"updated_at": book.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a single book.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// GetByDocumentID retrieves the book carrying the given content digest.
func (r *Repository) GetByDocumentID(ctx context.Context, documentID string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, "document_id = ?", documentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get book by digest: %w", err)
	}
	return &book, nil
}

// List returns one page of books plus the total count. sortBy must come from
// the allow-list; anything else falls back to created_at descending.
func (r *Repository) List(ctx context.Context, sortBy, sortOrder string, page, pageSize int) ([]entities.Book, int64, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
		sortOrder = "desc"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	var items []entities.Book
	err := r.db.WithContext(ctx).
		Order(column + " " + sortOrder).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return items, total, nil
}

// Delete removes the book record. The backing bytes in storage are the
// caller's concern.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&entities.Book{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
