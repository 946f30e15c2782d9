package metadata

import (
	"path/filepath"
	"strings"
)

// extractMOBI has no structural parser; it falls back to the common
// "Title - Author.mobi" filename convention. Files that do not follow it
// degrade to a bare-format record, which the shelf fills with the filename.
func extractMOBI(path string) (BookMetadata, error) {
	var md BookMetadata

	base := filepath.Base(path)
	parts := strings.Split(base, " - ")
	if len(parts) >= 2 {
		md.Title = strings.TrimSpace(parts[0])
		author := strings.TrimSuffix(parts[1], filepath.Ext(parts[1]))
		md.Author = strings.TrimSpace(author)
	}
	return md, nil
}
