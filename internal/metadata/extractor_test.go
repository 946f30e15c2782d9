package metadata

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const contentOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <metadata xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>The Master and Margarita</dc:title>
    <dc:creator>Mikhail Bulgakov</dc:creator>
    <dc:publisher>YMCA Press</dc:publisher>
    <dc:identifier opf:scheme="ISBN">isbn:978-0-14-118014-4</dc:identifier>
    <dc:identifier>uuid:0a1b2c3d</dc:identifier>
  </metadata>
  <manifest>
    <item id="cover-image" href="images/cover.jpg" media-type="image/jpeg"/>
    <item id="chapter1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
</package>`

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func writeEPUB(t *testing.T, coverData []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bulgakov.epub")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string][]byte{
		"META-INF/container.xml": []byte(containerXML),
		"OEBPS/content.opf":      []byte(contentOPF),
		"OEBPS/images/cover.jpg": coverData,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtract_EPUB(t *testing.T) {
	cover := testJPEG(t, 10, 10)
	path := writeEPUB(t, cover)

	md := NewExtractor(zap.NewNop()).Extract(path, filepath.Base(path))

	assert.Equal(t, "epub", md.Format)
	assert.Equal(t, "The Master and Margarita", md.Title)
	assert.Equal(t, "Mikhail Bulgakov", md.Author)
	assert.Equal(t, "YMCA Press", md.Publisher)
	assert.Equal(t, "isbn:978-0-14-118014-4", md.ISBN)
	assert.Equal(t, cover, md.Cover)
}

func TestExtract_EPUBMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.epub")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0o644))

	md := NewExtractor(zap.NewNop()).Extract(path, filepath.Base(path))

	assert.Equal(t, BookMetadata{Format: "epub"}, md)
}

func TestExtract_MOBIFilenameFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Dune - Frank Herbert.mobi")
	require.NoError(t, os.WriteFile(path, []byte("BOOKMOBI"), 0o644))

	md := NewExtractor(zap.NewNop()).Extract(path, filepath.Base(path))

	assert.Equal(t, "mobi", md.Format)
	assert.Equal(t, "Dune", md.Title)
	assert.Equal(t, "Frank Herbert", md.Author)
}

func TestExtract_MOBIWithoutSeparator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dune.mobi")
	require.NoError(t, os.WriteFile(path, []byte("BOOKMOBI"), 0o644))

	md := NewExtractor(zap.NewNop()).Extract(path, filepath.Base(path))

	assert.Equal(t, "mobi", md.Format)
	assert.Empty(t, md.Title)
	assert.Empty(t, md.Author)
}

func TestExtract_FB2(t *testing.T) {
	cover := testJPEG(t, 8, 8)
	fb2 := `<?xml version="1.0" encoding="UTF-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0">
  <description>
    <title-info>
      <book-title>We</book-title>
      <author>
        <first-name>Yevgeny</first-name>
        <last-name>Zamyatin</last-name>
      </author>
    </title-info>
    <publish-info>
      <publisher>Avon</publisher>
      <isbn>978-0-380-63313-5</isbn>
    </publish-info>
  </description>
  <binary id="cover.jpg" content-type="image/jpeg">` + base64.StdEncoding.EncodeToString(cover) + `</binary>
</FictionBook>`

	path := filepath.Join(t.TempDir(), "we.fb2")
	require.NoError(t, os.WriteFile(path, []byte(fb2), 0o644))

	md := NewExtractor(zap.NewNop()).Extract(path, filepath.Base(path))

	assert.Equal(t, "fb2", md.Format)
	assert.Equal(t, "We", md.Title)
	assert.Equal(t, "Yevgeny Zamyatin", md.Author)
	assert.Equal(t, "Avon", md.Publisher)
	assert.Equal(t, "978-0-380-63313-5", md.ISBN)
	assert.Equal(t, cover, md.Cover)
}

func TestExtract_FormatFromFilename(t *testing.T) {
	// Uploads are staged in extensionless temp files; the original filename
	// decides the format.
	path := filepath.Join(t.TempDir(), "upload-1234")
	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))

	md := NewExtractor(zap.NewNop()).Extract(path, "dune.epub")

	assert.Equal(t, "epub", md.Format)
}

func TestExtract_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	md := NewExtractor(zap.NewNop()).Extract(path, filepath.Base(path))

	assert.Equal(t, BookMetadata{Format: "txt"}, md)
}
