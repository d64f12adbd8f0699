package opds

import (
	"bytes"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed/atom"
)

// Fetcher retrieves the raw body at a URL using the owning connection's
// credentials.
type Fetcher func(u *url.URL) ([]byte, error)

// FindSearchURL locates a catalog's search template. Per OPDS 1.2 the
// feed advertises a link with rel "search" pointing at an OpenSearch
// descriptor; the descriptor's Atom-typed Url element carries the
// template. Any failure along the way yields "" — a catalog without
// search is not an error.
func FindSearchURL(feed *atom.Feed, domain *url.URL, fetch Fetcher) string {
	for _, link := range feed.Links {
		if link.Rel != RelSearch || !strings.Contains(link.Type, TypeOpenSearch) {
			continue
		}

		u, err := ParseHref(link.Href, domain)
		if err != nil {
			return ""
		}
		body, err := fetch(u)
		if err != nil {
			return ""
		}
		template, ok := descriptorTemplate(body)
		if !ok {
			return ""
		}
		resolved, err := ParseHref(template, domain)
		if err != nil {
			return ""
		}
		return resolved.String()
	}
	return ""
}

// descriptorTemplate walks an OpenSearch descriptor and returns the
// template attribute of the first Url element, at any depth, whose type
// advertises an Atom feed.
func descriptorTemplate(body []byte) (string, bool) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Url" {
			continue
		}

		var typ, template string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "type":
				typ = attr.Value
			case "template":
				template = attr.Value
			}
		}
		if strings.Contains(typ, TypeAtomFeed) && template != "" {
			return template, true
		}
	}
}
