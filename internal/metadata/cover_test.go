package metadata

import (
	"bytes"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCover_DownscalesLargeImage(t *testing.T) {
	input := testJPEG(t, 2000, 1000)

	out := NormalizeCover(input, 800)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestNormalizeCover_PortraitAspectPreserved(t *testing.T) {
	input := testJPEG(t, 600, 1200)

	out := NormalizeCover(input, 800)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dy())
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestNormalizeCover_SmallImageKeepsSize(t *testing.T) {
	input := testJPEG(t, 300, 200)

	out := NormalizeCover(input, 800)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestNormalizeCover_UndecodableBytesReturnedUnchanged(t *testing.T) {
	input := []byte("definitely not an image")

	assert.Equal(t, input, NormalizeCover(input, 800))
}
