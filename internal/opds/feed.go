// Package opds builds OPDS 1.2 catalog feeds, the Atom dialect e-reader
// apps use to browse and download from the library.
package opds

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/dengxuezhao/kompanion/internal/bookshelf"
	"github.com/dengxuezhao/kompanion/internal/entities"
)

const (
	atomTimeFormat = "2006-01-02T15:04:05Z"

	// NavigationMime is the media type of a navigation feed document.
	NavigationMime = "application/atom+xml;profile=opds-catalog;kind=navigation"

	acquisitionRel = "http://opds-spec.org/acquisition"
	coverRel       = "http://opds-spec.org/cover"
)

// Link is an Atom link element.
type Link struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr,omitempty"`
}

// Author is an Atom author element.
type Author struct {
	Name string `xml:"name"`
}

// Entry is one catalog item, a book in an acquisition feed.
type Entry struct {
	XMLName xml.Name `xml:"entry"`
	ID      string   `xml:"id"`
	Title   string   `xml:"title"`
	Updated string   `xml:"updated"`
	Author  *Author  `xml:"author,omitempty"`
	Links   []Link   `xml:"link"`
}

// Feed is the root catalog document.
type Feed struct {
	XMLName xml.Name `xml:"feed"`
	Xmlns   string   `xml:"xmlns,attr"`
	ID      string   `xml:"id"`
	Title   string   `xml:"title"`
	Updated string   `xml:"updated"`
	Links   []Link   `xml:"link"`
	Entries []Entry  `xml:"entry"`
}

// XML renders the feed with the XML declaration prepended.
func (f *Feed) XML() ([]byte, error) {
	body, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal opds feed: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// BuildCatalog renders one page of the library as an acquisition feed
// rooted at baseURL (the catalog route, no trailing slash).
func BuildCatalog(baseURL string, page *bookshelf.Page, now time.Time) *Feed {
	feed := &Feed{
		Xmlns:   "http://www.w3.org/2005/Atom",
		ID:      baseURL,
		Title:   "Kompanion Library",
		Updated: now.UTC().Format(atomTimeFormat),
		Links:   navigationLinks(baseURL, page),
	}
	for i := range page.Items {
		feed.Entries = append(feed.Entries, bookEntry(baseURL, &page.Items[i]))
	}
	return feed
}

func bookEntry(baseURL string, book *entities.Book) Entry {
	entry := Entry{
		ID:      book.ID,
		Title:   book.Title,
		Updated: book.UpdatedAt.UTC().Format(atomTimeFormat),
		Links: []Link{{
			Rel:  acquisitionRel,
			Href: fmt.Sprintf("%s/book/%s/download", baseURL, book.ID),
			Type: book.MimeType(),
		}},
	}
	if book.Author != "" {
		entry.Author = &Author{Name: book.Author}
	}
	if book.CoverPath != "" {
		entry.Links = append(entry.Links, Link{
			Rel:  coverRel,
			Href: fmt.Sprintf("%s/book/%s/cover", baseURL, book.ID),
			Type: "image/jpeg",
		})
	}
	return entry
}

func navigationLinks(baseURL string, page *bookshelf.Page) []Link {
	links := []Link{
		{Rel: "start", Href: baseURL, Type: NavigationMime},
		{Rel: "self", Href: pageHref(baseURL, page.Page), Type: NavigationMime},
	}
	if page.TotalPages > 0 {
		links = append(links, Link{Rel: "last", Href: pageHref(baseURL, page.TotalPages), Type: NavigationMime})
	}
	if page.HasNext() {
		links = append(links, Link{Rel: "next", Href: pageHref(baseURL, page.Page+1), Type: NavigationMime})
	}
	if page.HasPrev() {
		links = append(links, Link{Rel: "previous", Href: pageHref(baseURL, page.Page-1), Type: NavigationMime})
	}
	return links
}

func pageHref(baseURL string, page int) string {
	return fmt.Sprintf("%s?page=%d", baseURL, page)
}
