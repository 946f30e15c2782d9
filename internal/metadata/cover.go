package metadata

import (
	"bytes"

	"github.com/disintegration/imaging"
)

const (
	// DefaultCoverMaxSize bounds the longer dimension of stored covers.
	DefaultCoverMaxSize = 800

	coverJPEGQuality = 85
)

// NormalizeCover re-encodes raw cover bytes as a bounded JPEG. Images larger
// than maxSize on either side are scaled down with aspect ratio preserved;
// smaller images are re-encoded at their original size. Any decode or encode
// failure returns the input unchanged, since cover processing must never
// block an ingestion.
func NormalizeCover(data []byte, maxSize int) []byte {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxSize || bounds.Dy() > maxSize {
		img = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(coverJPEGQuality)); err != nil {
		return data
	}
	return buf.Bytes()
}
