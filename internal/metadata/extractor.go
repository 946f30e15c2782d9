// Package metadata extracts bibliographic data and cover images from uploaded
// e-book files.
//
// Extraction is strictly best-effort: a malformed file degrades to a record
// carrying only the format, it never aborts an ingestion. Supported formats
// are epub, pdf, mobi (filename heuristic only) and fb2 (plain or zipped).
package metadata

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// BookMetadata is the transient result of one extraction attempt.
type BookMetadata struct {
	Title     string
	Author    string
	Publisher string
	ISBN      string
	Format    string
	Cover     []byte
}

// Extractor dispatches to a format-specific parser based on the file
// extension.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract parses the file at path. The format is taken from filename's
// extension, case-insensitively; uploads land in temp files, so path itself
// may carry no useful extension. Unknown extensions yield a record with only
// Format set; parser errors are logged and degrade to the same shape.
func (e *Extractor) Extract(path, filename string) BookMetadata {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	var (
		md  BookMetadata
		err error
	)
	switch ext {
	case "epub":
		md, err = extractEPUB(path)
	case "pdf":
		md, err = extractPDF(path)
	case "mobi":
		md, err = extractMOBI(filename)
	case "fb2":
		md, err = extractFB2(path)
	default:
		e.logger.Warn("unsupported book format", zap.String("format", ext))
		return BookMetadata{Format: ext}
	}
	if err != nil {
		e.logger.Error("metadata extraction failed",
			zap.String("path", path),
			zap.String("format", ext),
			zap.Error(err))
		return BookMetadata{Format: ext}
	}
	md.Format = ext
	return md
}
