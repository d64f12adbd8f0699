// Package connection unifies the local download directory and remote
// OPDS catalogs behind a single navigable surface. Each connection
// keeps its own history stack; the controller guards each instance
// with a mutex so concurrent fetch tasks never interleave on one
// connection.
package connection

import (
	"context"
	"net/url"

	"opdscat/internal/opds"
)

// Connection is the navigation surface shared by all tabs.
type Connection interface {
	// CurrentAddress is the top of the history stack, or the
	// connection's origin when the history is empty.
	CurrentAddress() *url.URL
	// GetPage fetches the entries at addr without touching history.
	GetPage(ctx context.Context, addr *url.URL) ([]opds.Entry, error)
	// NavigateTo pushes addr onto the history stack and fetches it.
	// The push happens even when the fetch fails; the caller unwinds
	// with Back or navigates elsewhere.
	NavigateTo(ctx context.Context, addr *url.URL) ([]opds.Entry, error)
	// Back pops the history stack and fetches the new top. It fails
	// when the history is empty.
	Back(ctx context.Context) ([]opds.Entry, error)
	// GetImageBytes fetches raw image data. It never fails; any error
	// yields empty bytes.
	GetImageBytes(ctx context.Context, addr *url.URL) []byte
	// Search runs the connection's search capability for query.
	Search(ctx context.Context, query string) ([]opds.Entry, error)
}
