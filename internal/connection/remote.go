package connection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"

	"opdscat/internal/fsutil"
	"opdscat/internal/opds"
	"opdscat/internal/server"
)

const userAgent = "opdscat"

// Remote browses an OPDS catalog over HTTP. Pages are cached by URL for
// the lifetime of the connection; the cache is never invalidated.
type Remote struct {
	server    server.Server
	password  string
	client    *http.Client
	base      *url.URL
	domain    *url.URL
	history   []*url.URL
	cache     map[string][]opds.Entry
	searchURL string
}

// DialRemote connects to the catalog at the server's base URL. The
// initial fetch doubles as a credential check; on success the feed's
// top-level links are probed for an OpenSearch descriptor.
func DialRemote(ctx context.Context, srv server.Server, password string, client *http.Client) (*Remote, error) {
	if client == nil {
		client = &http.Client{}
	}
	domain, err := srv.Domain()
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(srv.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", srv.BaseURL, err)
	}

	r := &Remote{
		server:   srv,
		password: password,
		client:   client,
		base:     base,
		domain:   domain,
		cache:    make(map[string][]opds.Entry),
	}

	body, err := r.fetch(ctx, base)
	if err != nil {
		return nil, err
	}
	feed, err := (&atom.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse catalog feed: %w", err)
	}

	r.searchURL = opds.FindSearchURL(feed, domain, func(u *url.URL) ([]byte, error) {
		return r.fetch(ctx, u)
	})
	return r, nil
}

// SearchTemplate reports the OpenSearch template discovered at dial
// time, or "" when the catalog has no search.
func (r *Remote) SearchTemplate() string {
	return r.searchURL
}

func (r *Remote) newRequest(ctx context.Context, u *url.URL) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", u, err)
	}
	req.Header.Set("User-Agent", userAgent)
	// Basic auth is attempted even with an empty password; some
	// catalogs accept username-only accounts.
	if r.server.Username != "" {
		req.SetBasicAuth(r.server.Username, r.password)
	}
	return req, nil
}

func (r *Remote) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := r.newRequest(ctx, u)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d", u, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (r *Remote) CurrentAddress() *url.URL {
	if len(r.history) == 0 {
		return r.base
	}
	return r.history[len(r.history)-1]
}

func (r *Remote) GetPage(ctx context.Context, addr *url.URL) ([]opds.Entry, error) {
	if cached, ok := r.cache[addr.String()]; ok {
		return cached, nil
	}

	body, err := r.fetch(ctx, addr)
	if err != nil {
		return nil, err
	}
	feed, err := (&atom.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed at %s: %w", addr, err)
	}

	entries := make([]opds.Entry, 0, len(feed.Entries))
	for _, fe := range feed.Entries {
		ce, err := opds.FromAtom(fe, r.domain)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ce)
	}

	r.cache[addr.String()] = entries
	return entries, nil
}

func (r *Remote) NavigateTo(ctx context.Context, addr *url.URL) ([]opds.Entry, error) {
	r.history = append(r.history, addr)
	return r.GetPage(ctx, addr)
}

func (r *Remote) Back(ctx context.Context) ([]opds.Entry, error) {
	if len(r.history) == 0 {
		return nil, errors.New("at catalog root; cannot go back")
	}
	r.history = r.history[:len(r.history)-1]
	return r.GetPage(ctx, r.CurrentAddress())
}

func (r *Remote) GetImageBytes(ctx context.Context, addr *url.URL) []byte {
	body, err := r.fetch(ctx, addr)
	if err != nil {
		return nil
	}
	return body
}

// Search substitutes the query into the catalog's OpenSearch template
// and navigates to the result. The query is substituted verbatim.
func (r *Remote) Search(ctx context.Context, query string) ([]opds.Entry, error) {
	if r.searchURL == "" {
		return nil, errors.New("Server does not have searching enabled.")
	}
	target := strings.ReplaceAll(r.searchURL, "{searchTerms}", query)
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse search url %q: %w", target, err)
	}
	return r.NavigateTo(ctx, u)
}

// Download retrieves the file at u and derives a filename for it:
// the Content-Disposition filename when present, else the last URL path
// segment, else a millisecond timestamp.
func (r *Remote) Download(ctx context.Context, u *url.URL) (string, []byte, error) {
	req, err := r.newRequest(ctx, u)
	if err != nil {
		return "", nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, fmt.Errorf("%s returned status %d", u, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if name, ok := fsutil.FilenameFromContentDisposition(cd); ok {
			return name, data, nil
		}
	}

	name := lastPathSegment(u)
	if name == "" {
		name = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	return name, data, nil
}

func lastPathSegment(u *url.URL) string {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segments[len(segments)-1]
}
