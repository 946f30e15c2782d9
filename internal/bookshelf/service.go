// Package bookshelf implements the book catalog: ingesting uploads,
// listing and serving the library, and keeping catalog rows and stored
// files in step.
package bookshelf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dengxuezhao/kompanion/internal/database/books"
	"github.com/dengxuezhao/kompanion/internal/entities"
	"github.com/dengxuezhao/kompanion/internal/fingerprint"
	"github.com/dengxuezhao/kompanion/internal/metadata"
	"github.com/dengxuezhao/kompanion/internal/storage"
)

var (
	// ErrUnknownFormat rejects uploads whose filename carries no extension.
	ErrUnknownFormat = errors.New("unknown book format")

	// ErrNoCover reports a book that was ingested without a cover image. It
	// is distinct from books.ErrNotFound so handlers can tell "no such book"
	// from "book has no cover".
	ErrNoCover = errors.New("book has no cover")
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// Shelf ties together the metadata extractor, the file storage backend and
// the catalog table.
type Shelf struct {
	storage   storage.Storage
	repo      *books.Repository
	extractor *metadata.Extractor
	logger    *zap.Logger
}

func NewShelf(st storage.Storage, repo *books.Repository, extractor *metadata.Extractor, logger *zap.Logger) *Shelf {
	return &Shelf{storage: st, repo: repo, extractor: extractor, logger: logger}
}

// Page is one slice of the catalog with its paging envelope.
type Page struct {
	Items      []entities.Book `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// HasNext reports whether a later page exists.
func (p *Page) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p *Page) HasPrev() bool { return p.Page > 1 }

// Store ingests the file at path, uploaded under filename, into the catalog.
// The content digest is computed first so a re-upload of a known file fails
// with books.ErrDuplicate before any bytes are copied into storage.
func (s *Shelf) Store(ctx context.Context, path, filename string) (*entities.Book, error) {
	digest := fingerprint.PartialMD5(path)
	if digest == "" {
		return nil, fmt.Errorf("fingerprint %s: file unreadable", filename)
	}

	if _, err := s.repo.GetByDocumentID(ctx, digest); err == nil {
		return nil, books.ErrDuplicate
	} else if !errors.Is(err, books.ErrNotFound) {
		return nil, err
	}

	md := s.extractor.Extract(path, filename)
	if md.Format == "" {
		return nil, ErrUnknownFormat
	}
	if md.Title == "" {
		md.Title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	now := time.Now().UTC()
	book := &entities.Book{
		ID:         uuid.NewString(),
		Title:      md.Title,
		Author:     md.Author,
		Publisher:  md.Publisher,
		ISBN:       md.ISBN,
		DocumentID: digest,
		Format:     md.Format,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	book.FilePath = storageKey(now, book.ID, md.Format)

	if err := s.storage.Write(ctx, path, book.FilePath); err != nil {
		return nil, fmt.Errorf("store book file: %w", err)
	}

	// Cover handling never fails the ingestion. A book without a cover is
	// still a book.
	if len(md.Cover) > 0 {
		key, err := s.storeCover(ctx, book.ID, md.Cover)
		if err != nil {
			s.logger.Warn("cover not stored",
				zap.String("book_id", book.ID),
				zap.Error(err))
		} else {
			book.CoverPath = key
		}
	}

	if err := s.repo.Store(ctx, book); err != nil {
		// The unique digest constraint may still fire under concurrent
		// uploads of the same file; undo the blob write in that case.
		if delErr := s.storage.Delete(ctx, book.FilePath); delErr != nil {
			s.logger.Warn("orphaned book file after failed insert",
				zap.String("key", book.FilePath),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("book ingested",
		zap.String("book_id", book.ID),
		zap.String("title", book.Title),
		zap.String("format", book.Format),
		zap.String("digest", digest))
	return book, nil
}

// List returns one catalog page. Out-of-range paging values are clamped
// rather than rejected: page floors at 1, pageSize defaults to 25 and caps
// at 100. Unknown sort fields fall back to newest-first in the repository.
func (s *Shelf) List(ctx context.Context, sortBy, sortOrder string, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := s.repo.List(ctx, sortBy, sortOrder, page, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Get retrieves a single catalog entry.
func (s *Shelf) Get(ctx context.Context, id string) (*entities.Book, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByDigest resolves a KOReader document digest to its catalog entry.
func (s *Shelf) GetByDigest(ctx context.Context, digest string) (*entities.Book, error) {
	return s.repo.GetByDocumentID(ctx, digest)
}

// MetadataUpdate carries the editable catalog fields. Zero values mean
// "leave unchanged".
type MetadataUpdate struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
	ISBN      string `json:"isbn"`
}

// UpdateMetadata merges the non-zero fields of upd into the stored record
// and returns the result.
func (s *Shelf) UpdateMetadata(ctx context.Context, id string, upd MetadataUpdate) (*entities.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != "" {
		book.Title = upd.Title
	}
	if upd.Author != "" {
		book.Author = upd.Author
	}
	if upd.Publisher != "" {
		book.Publisher = upd.Publisher
	}
	if upd.Year != 0 {
		book.Year = upd.Year
	}
	if upd.ISBN != "" {
		book.ISBN = upd.ISBN
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Download resolves the book and a readable local path for its file.
func (s *Shelf) Download(ctx context.Context, id string) (*entities.Book, string, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	path, err := s.storage.Read(ctx, book.FilePath)
	if err != nil {
		return nil, "", fmt.Errorf("read book file: %w", err)
	}
	return book, path, nil
}

// Cover resolves a readable local path for the book's cover image, or
// ErrNoCover when none was extracted at ingestion time.
func (s *Shelf) Cover(ctx context.Context, id string) (string, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if book.CoverPath == "" {
		return "", ErrNoCover
	}
	path, err := s.storage.Read(ctx, book.CoverPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoCover
		}
		return "", fmt.Errorf("read cover: %w", err)
	}
	return path, nil
}

// Delete removes the catalog row first, then the stored file and cover.
// Blob deletion failures are logged, not surfaced: the row is gone, so the
// book is gone.
func (s *Shelf) Delete(ctx context.Context, id string) error {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, book.FilePath); err != nil {
		s.logger.Warn("book file not deleted",
			zap.String("key", book.FilePath),
			zap.Error(err))
	}
	if book.CoverPath != "" {
		if err := s.storage.Delete(ctx, book.CoverPath); err != nil {
			s.logger.Warn("cover not deleted",
				zap.String("key", book.CoverPath),
				zap.Error(err))
		}
	}
	return nil
}

// storeCover normalizes the raw cover bytes and writes them under the
// book's cover key, staging through a temp file because the storage
// interface copies from paths.
func (s *Shelf) storeCover(ctx context.Context, bookID string, raw []byte) (string, error) {
	data := metadata.NormalizeCover(raw, metadata.DefaultCoverMaxSize)

	tmp, err := os.CreateTemp("", "kompanion-cover-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	key := coverKey(bookID)
	if err := s.storage.Write(ctx, tmp.Name(), key); err != nil {
		return "", err
	}
	return key, nil
}

// storageKey shards book files by ingestion date.
func storageKey(t time.Time, id, format string) string {
	return fmt.Sprintf("%04d/%02d/%02d/%s.%s", t.Year(), t.Month(), t.Day(), id, format)
}

func coverKey(id string) string {
	return "covers/" + id + ".jpg"
}
