// Package storage persists the download history in a sqlite database
// next to the configuration file.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Download is one completed download.
type Download struct {
	Filename     string
	SourceURL    string
	Size         int64
	DownloadedAt time.Time
}

// History records completed downloads.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database at path.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

func (h *History) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS downloads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  filename TEXT NOT NULL,
  source_url TEXT NOT NULL,
  size INTEGER NOT NULL,
  downloaded_at TEXT NOT NULL
);
`
	if _, err := h.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Record appends one completed download.
func (h *History) Record(ctx context.Context, d Download) error {
	_, err := h.db.ExecContext(ctx, `
INSERT INTO downloads (filename, source_url, size, downloaded_at)
VALUES (?, ?, ?, ?)
`, d.Filename, d.SourceURL, d.Size, d.DownloadedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record download %s: %w", d.Filename, err)
	}
	return nil
}

// Recent returns the newest downloads, most recent first.
func (h *History) Recent(ctx context.Context, limit int) ([]Download, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx, `
SELECT filename, source_url, size, downloaded_at
FROM downloads
ORDER BY id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query downloads: %w", err)
	}
	defer rows.Close()

	downloads := make([]Download, 0, limit)
	for rows.Next() {
		var d Download
		var downloadedAt string
		if err := rows.Scan(&d.Filename, &d.SourceURL, &d.Size, &downloadedAt); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		d.DownloadedAt, err = time.Parse(time.RFC3339Nano, downloadedAt)
		if err != nil {
			return nil, fmt.Errorf("parse downloaded_at %q: %w", downloadedAt, err)
		}
		downloads = append(downloads, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate downloads: %w", err)
	}
	return downloads, nil
}
