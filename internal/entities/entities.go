// Package entities defines the persisted records shared by the repository
// packages under internal/database.
package entities

import (
	"strings"
	"time"
)

// Book is one entry in the library. The DocumentID is the partial content
// digest KOReader derives for the same file, so a book uploaded here and a
// book opened on a device resolve to the same identity.
type Book struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"index;size:512" json:"title"`
	Author     string    `gorm:"index;size:256" json:"author"`
	Publisher  string    `gorm:"size:256" json:"publisher"`
	Year       int       `json:"year"`
	ISBN       string    `gorm:"size:20" json:"isbn"`
	DocumentID string    `gorm:"uniqueIndex;size:64" json:"document_id"`
	FilePath   string    `gorm:"size:1024" json:"-"`
	Format     string    `gorm:"size:10" json:"format"`
	CoverPath  string    `gorm:"size:1024" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Extension returns the storage key's file extension, without the dot.
func (b *Book) Extension() string {
	if b.Format != "" {
		return b.Format
	}
	idx := strings.LastIndexByte(b.FilePath, '.')
	if idx < 0 {
		return ""
	}
	return b.FilePath[idx+1:]
}

// Filename builds the name offered to a downloading client.
func (b *Book) Filename() string {
	basename := b.ID + "." + b.Extension()
	if b.Author == "" {
		return b.Title + " -- " + basename
	}
	return b.Title + " - " + b.Author + " -- " + basename
}

// MimeType maps the book format to its media type. Unknown formats yield an
// empty string so callers can fall back to application/octet-stream.
func (b *Book) MimeType() string {
	switch b.Extension() {
	case "epub":
		return "application/epub+zip"
	case "pdf":
		return "application/pdf"
	case "mobi":
		return "application/x-mobipocket-ebook"
	case "fb2":
		return "application/fb2"
	default:
		return ""
	}
}

// Progress is a single reading-position report from a device. Rows are
// append-only; the current position for a document is the row with the
// greatest Timestamp.
type Progress struct {
	ID             string    `gorm:"primaryKey;size:36" json:"-"`
	Document       string    `gorm:"index;size:64" json:"document"`
	Percentage     float64   `json:"percentage"`
	Progress       string    `gorm:"size:1024" json:"progress"`
	Device         string    `gorm:"size:256" json:"device"`
	DeviceID       string    `gorm:"size:256" json:"device_id"`
	Timestamp      int64     `json:"timestamp"`
	AuthDeviceName string    `gorm:"size:256" json:"-"`
	CreatedAt      time.Time `json:"-"`
}

// Device is a registered sync client. PasswordDigest holds the MD5 hex of the
// device password, matching what KOReader computes on its side.
type Device struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Name           string    `gorm:"uniqueIndex;size:256" json:"name"`
	PasswordDigest string    `gorm:"size:32" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// User is a web account. Passwords are bcrypt hashes, unlike device digests.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string    `gorm:"size:60" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StoredFile is one row of the blob-table storage backend.
type StoredFile struct {
	Path      string    `gorm:"primaryKey;size:1024"`
	Content   []byte    `gorm:"type:blob"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
