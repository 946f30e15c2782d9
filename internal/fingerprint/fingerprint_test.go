package fingerprint

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestPartialMD5_SmallFile(t *testing.T) {
	content := []byte("a short book")
	path := writeFile(t, "short.epub", content)

	sum := md5.Sum(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), PartialMD5(path))
}

func TestPartialMD5_IgnoresTrailingBytes(t *testing.T) {
	head := bytes.Repeat([]byte{0xAB}, PartialBlockSize)

	first := writeFile(t, "first.epub", head)
	second := writeFile(t, "second.epub", append(append([]byte{}, head...), []byte("reader-appended metadata")...))

	require.NotEmpty(t, PartialMD5(first))
	assert.Equal(t, PartialMD5(first), PartialMD5(second))
}

func TestPartialMD5_DiffersWithinBlock(t *testing.T) {
	first := writeFile(t, "a.epub", []byte("first edition"))
	second := writeFile(t, "b.epub", []byte("second edition"))

	assert.NotEqual(t, PartialMD5(first), PartialMD5(second))
}

func TestPartialMD5_MissingFile(t *testing.T) {
	assert.Equal(t, "", PartialMD5(filepath.Join(t.TempDir(), "absent.epub")))
}

func TestFullMD5(t *testing.T) {
	content := []byte("complete content")
	path := writeFile(t, "full.epub", content)

	sum := md5.Sum(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), FullMD5(path))
	assert.Equal(t, "", FullMD5(path+".missing"))
}
