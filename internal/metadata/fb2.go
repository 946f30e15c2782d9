package metadata

import (
	"archive/zip"
	"encoding/base64"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// extractFB2 parses a FictionBook document. FB2 files are often shipped
// inside a zip archive; that container is unwrapped first.
func extractFB2(path string) (BookMetadata, error) {
	var md BookMetadata

	doc, err := openFB2(path)
	if err != nil {
		return md, err
	}
	root := doc.Root()
	if root == nil {
		return md, nil
	}

	md.Title = firstText(root, "book-title")

	if author := findLocal(root, "author"); author != nil {
		var parts []string
		if first := childText(author, "first-name"); first != "" {
			parts = append(parts, first)
		}
		if last := childText(author, "last-name"); last != "" {
			parts = append(parts, last)
		}
		md.Author = strings.Join(parts, " ")
	}

	md.Publisher = firstText(root, "publisher")
	md.ISBN = firstText(root, "isbn")
	md.Cover = fb2CoverImage(root)

	return md, nil
}

// openFB2 parses either a bare .fb2 file or the first .fb2 member of a zip
// archive.
func openFB2(path string) (*etree.Document, error) {
	if zr, err := zip.OpenReader(path); err == nil {
		defer zr.Close()
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".fb2") {
				raw, err := readZipFile(&zr.Reader, f.Name)
				if err != nil {
					return nil, err
				}
				doc := etree.NewDocument()
				if err := doc.ReadFromBytes(raw); err != nil {
					return nil, err
				}
				return doc, nil
			}
		}
		// A zip with no .fb2 member is malformed; fall through to direct
		// parsing, which will produce the actual XML error.
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, err
	}
	return doc, nil
}

// fb2CoverImage decodes the base64 binary whose id starts with "cover" and
// whose declared content type is an image.
func fb2CoverImage(root *etree.Element) []byte {
	for _, binary := range findAllLocal(root, "binary") {
		contentType := binary.SelectAttrValue("content-type", "")
		if !strings.HasPrefix(contentType, "image/") {
			continue
		}
		id := strings.ToLower(binary.SelectAttrValue("id", ""))
		if !strings.HasPrefix(id, "cover") {
			continue
		}
		text := strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
				return -1
			}
			return r
		}, binary.Text())
		data, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			continue
		}
		return data
	}
	return nil
}

// firstText returns the trimmed text of the first element with the given
// local name anywhere in the tree.
func firstText(root *etree.Element, local string) string {
	if el := findLocal(root, local); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}
