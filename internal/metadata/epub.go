package metadata

import (
	"archive/zip"
	"errors"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// extractEPUB reads the OPF package document of an EPUB container. Element
// matching is done on local names so that EPUB 2 and 3 files with differing
// namespace prefixes parse the same way.
func extractEPUB(path string) (BookMetadata, error) {
	var md BookMetadata

	zr, err := zip.OpenReader(path)
	if err != nil {
		return md, err
	}
	defer zr.Close()

	opfPath, err := packageDocumentPath(&zr.Reader)
	if err != nil {
		return md, err
	}

	doc, err := readXML(&zr.Reader, opfPath)
	if err != nil {
		return md, err
	}

	root := doc.Root()
	if root == nil {
		return md, errors.New("epub: empty package document")
	}

	if meta := findLocal(root, "metadata"); meta != nil {
		md.Title = childText(meta, "title")
		md.Author = childText(meta, "creator")
		md.Publisher = childText(meta, "publisher")
		md.ISBN = isbnIdentifier(meta)
	}

	if coverHref := coverManifestHref(root); coverHref != "" {
		// Hrefs in the manifest are relative to the OPF document.
		base := ""
		if idx := strings.LastIndexByte(opfPath, '/'); idx >= 0 {
			base = opfPath[:idx+1]
		}
		md.Cover, _ = readZipFile(&zr.Reader, base+coverHref)
	}

	return md, nil
}

// packageDocumentPath resolves META-INF/container.xml to the OPF location.
func packageDocumentPath(zr *zip.Reader) (string, error) {
	doc, err := readXML(zr, "META-INF/container.xml")
	if err != nil {
		return "", err
	}
	root := doc.Root()
	if root == nil {
		return "", errors.New("epub: empty container.xml")
	}
	if rootfile := findLocal(root, "rootfile"); rootfile != nil {
		if fullPath := rootfile.SelectAttrValue("full-path", ""); fullPath != "" {
			return fullPath, nil
		}
	}
	return "", errors.New("epub: no rootfile declared in container.xml")
}

// isbnIdentifier returns the first dc:identifier whose value or scheme
// mentions "isbn", case-insensitively.
func isbnIdentifier(meta *etree.Element) string {
	for _, id := range childrenLocal(meta, "identifier") {
		value := strings.TrimSpace(id.Text())
		scheme := id.SelectAttrValue("scheme", "") + id.SelectAttrValue("opf:scheme", "")
		if strings.Contains(strings.ToLower(value), "isbn") ||
			strings.Contains(strings.ToLower(scheme), "isbn") {
			return value
		}
	}
	return ""
}

// coverManifestHref picks the first image resource whose id or filename
// contains "cover".
func coverManifestHref(root *etree.Element) string {
	manifest := findLocal(root, "manifest")
	if manifest == nil {
		return ""
	}
	for _, item := range childrenLocal(manifest, "item") {
		mediaType := item.SelectAttrValue("media-type", "")
		if !strings.HasPrefix(mediaType, "image/") {
			continue
		}
		id := strings.ToLower(item.SelectAttrValue("id", ""))
		href := item.SelectAttrValue("href", "")
		if strings.Contains(id, "cover") || strings.Contains(strings.ToLower(href), "cover") {
			return href
		}
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, errors.New("epub: file not found in container: " + name)
}

func readXML(zr *zip.Reader, name string) (*etree.Document, error) {
	raw, err := readZipFile(zr, name)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, err
	}
	return doc, nil
}
