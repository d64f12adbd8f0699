// Package opds models the rows shown in the directory view and the
// transform from Atom feed entries into them. OPDS 1.2 catalogs are
// Atom feeds whose links carry acquisition, image and navigation
// semantics in their rel and type attributes.
package opds

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed/atom"
)

// OPDS 1.2 link relations and media types.
const (
	RelSearch            = "search"
	RelAcquisitionPrefix = "http://opds-spec.org/acquisition"
	TypeAtomFeed         = "application/atom+xml"
	TypeOpenSearch       = "opensearchdescription"
)

// Entry is one row in the directory view: a file on disk, a directory
// on disk, or an entry from a remote catalog.
type Entry interface {
	Title() string
}

// File is a regular file in the download directory.
type File struct {
	Name string
	URL  *url.URL
}

func (f File) Title() string { return f.Name }

// Directory is a subdirectory of the download directory.
type Directory struct {
	Name string
	URL  *url.URL
}

func (d Directory) Title() string { return d.Name }

// Download pairs an acquisition URL with its advertised media type.
type Download struct {
	URL      *url.URL
	MimeType string
}

// CatalogEntry is an entry from a remote OPDS feed. Href is set when
// the entry leads to another feed, Downloads when it offers files to
// acquire, and Unsupported when the catalog only offers it through an
// acquisition kind the browser cannot act on.
type CatalogEntry struct {
	Name        string
	Details     string
	Author      string
	Unsupported string
	Downloads   []Download
	Image       *url.URL
	Href        *url.URL
}

func (c CatalogEntry) Title() string { return c.Name }

// Acquisition subtypes that require accounts, payment or lending
// infrastructure; entries offered only through these are rejected at
// selection time.
var unsupportedKinds = []string{"borrow", "buy", "subscribe", "sample"}

// FromAtom converts an Atom entry into a CatalogEntry. Relative link
// hrefs are resolved against the catalog domain.
func FromAtom(entry *atom.Entry, domain *url.URL) (CatalogEntry, error) {
	ce := CatalogEntry{Name: entry.Title}

	if len(entry.Authors) > 0 {
		names := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			names = append(names, a.Name)
		}
		ce.Author = strings.Join(names, ",")
	}

	var details strings.Builder
	if entry.Summary != "" {
		fmt.Fprintf(&details, "Summary: %s\n\n", entry.Summary)
	}
	if entry.Content != nil {
		details.WriteString(entry.Content.Value)
		details.WriteString("\n")
	}
	if len(entry.Categories) > 0 {
		labels := make([]string, 0, len(entry.Categories))
		for _, cat := range entry.Categories {
			labels = append(labels, cat.Label)
		}
		details.WriteString("Categories: " + strings.Join(labels, ","))
	}
	ce.Details = details.String()

	for _, link := range entry.Links {
		href, err := ParseHref(link.Href, domain)
		if err != nil {
			return CatalogEntry{}, err
		}

		if strings.Contains(link.Rel, "acquisition") && containsAny(link.Rel, unsupportedKinds) {
			ce.Unsupported = link.Rel
		}

		if link.Type == "" {
			return CatalogEntry{}, fmt.Errorf("malformed feed: link %s is missing a media type", link.Href)
		}

		switch {
		case strings.Contains(link.Type, TypeAtomFeed):
			ce.Href = href
		case strings.Contains(link.Type, "image"):
			ce.Image = href
		default:
			ce.Downloads = append(ce.Downloads, Download{URL: href, MimeType: link.Type})
		}
	}

	return ce, nil
}

// ParseHref parses href as an absolute URL, falling back to resolution
// against base when it is relative.
func ParseHref(href string, base *url.URL) (*url.URL, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("parse href %q: %w", href, err)
	}
	if u.IsAbs() {
		return u, nil
	}
	return base.ResolveReference(u), nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
