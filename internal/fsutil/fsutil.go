// Package fsutil holds the file-URL plumbing shared by the local
// connection and the download pipeline. Addresses are file:// URLs
// everywhere so that local and remote pages can be navigated through
// the same interface.
package fsutil

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// FileURL converts a filesystem path into a file:// URL.
func FileURL(path string) *url.URL {
	return &url.URL{Scheme: "file", Path: path}
}

// FilePath extracts the filesystem path from a file:// URL.
func FilePath(u *url.URL) string {
	return u.Path
}

// DirectoryURL converts a path string into a file:// URL, verifying
// that it points at an existing directory.
func DirectoryURL(dir string) (*url.URL, error) {
	u, err := url.Parse("file://" + dir)
	if err != nil {
		return nil, fmt.Errorf("parse directory path %q: %w", dir, err)
	}
	info, err := os.Stat(u.Path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return u, nil
}

// ReadDir returns the entry names of the directory at u.
func ReadDir(u *url.URL) ([]string, error) {
	dirEntries, err := os.ReadDir(FilePath(u))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		names = append(names, e.Name())
	}
	return names, nil
}

// SaveBytes writes data to dir/filename after checking that the magic
// bytes agree with the filename's extension. A server that answers an
// acquisition link with an HTML error page fails here instead of
// leaving a broken file in the library.
func SaveBytes(data []byte, dir *url.URL, filename string) error {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return fmt.Errorf("could not save %s: file was not downloaded properly, file type is unrecognized", filename)
	}

	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if kind.Extension != ext {
		return fmt.Errorf("could not save %s: file was not downloaded properly, file was returned from the server as a %s", filename, kind.Extension)
	}

	full := filepath.Join(FilePath(dir), filename)
	return os.WriteFile(full, data, 0o644)
}

// FilenameFromContentDisposition pulls the filename out of a
// Content-Disposition header value. Only the bare filename= form is
// understood; percent-encoded spaces are decoded.
func FilenameFromContentDisposition(cd string) (string, bool) {
	for _, part := range strings.Split(cd, ";") {
		if strings.HasPrefix(part, " filename=") {
			name := strings.TrimPrefix(part, " filename=")
			return strings.ReplaceAll(name, "%20", " "), true
		}
	}
	return "", false
}

// RenameWithinDir renames the file at oldPath to newName, keeping it in
// the same parent directory. Only the final path element of newName is
// used.
func RenameWithinDir(oldPath, newName string) error {
	target := filepath.Join(filepath.Dir(oldPath), filepath.Base(newName))
	return os.Rename(oldPath, target)
}
