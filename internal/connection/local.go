package connection

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path"
	"strings"

	"opdscat/internal/fsutil"
	"opdscat/internal/opds"
)

// Local browses the download directory on disk.
type Local struct {
	history []*url.URL
	initDir *url.URL
}

// NewLocal returns a local connection rooted at the download directory.
func NewLocal(initDir *url.URL) *Local {
	return &Local{initDir: initDir}
}

func (l *Local) CurrentAddress() *url.URL {
	if len(l.history) == 0 {
		return l.initDir
	}
	return l.history[len(l.history)-1]
}

func (l *Local) GetPage(ctx context.Context, addr *url.URL) ([]opds.Entry, error) {
	names, err := fsutil.ReadDir(addr)
	if err != nil {
		return nil, err
	}

	entries := make([]opds.Entry, 0, len(names))
	for _, name := range names {
		full := &url.URL{Scheme: addr.Scheme, Path: path.Join(addr.Path, name)}
		info, err := os.Stat(fsutil.FilePath(full))
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			entries = append(entries, opds.Directory{Name: name, URL: full})
		} else {
			entries = append(entries, opds.File{Name: name, URL: full})
		}
	}
	return entries, nil
}

func (l *Local) NavigateTo(ctx context.Context, addr *url.URL) ([]opds.Entry, error) {
	l.history = append(l.history, addr)
	return l.GetPage(ctx, addr)
}

func (l *Local) Back(ctx context.Context) ([]opds.Entry, error) {
	if len(l.history) == 0 {
		return nil, errors.New("at directory root; cannot go back")
	}
	l.history = l.history[:len(l.history)-1]
	return l.GetPage(ctx, l.CurrentAddress())
}

// GetImageBytes returns empty bytes; cover rendering for local files is
// not implemented.
func (l *Local) GetImageBytes(ctx context.Context, addr *url.URL) []byte {
	return nil
}

// Search re-reads the current directory and keeps the entries whose
// title contains query. The re-read is pushed onto history so Back
// undoes the search.
func (l *Local) Search(ctx context.Context, query string) ([]opds.Entry, error) {
	entries, err := l.NavigateTo(ctx, l.CurrentAddress())
	if err != nil {
		return nil, err
	}

	matches := make([]opds.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e.Title(), query) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}
