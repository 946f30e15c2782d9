package metadata

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads the document information dictionary. PDF has no standard
// embedded-cover convention, so no cover is extracted.
func extractPDF(path string) (md BookMetadata, err error) {
	// The pdf package panics on some malformed files; convert that into the
	// regular degraded-metadata path.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return md, err
	}
	defer f.Close()

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return md, nil
	}

	md.Title = infoString(info, "Title")
	md.Author = infoString(info, "Author")
	md.Publisher = infoString(info, "Publisher")
	return md, nil
}

func infoString(info pdf.Value, key string) string {
	v := info.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return v.Text()
}
