package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// epubBytes builds the smallest byte slice the magic-byte sniffer
// recognizes as an EPUB: a zip local-file header followed by the
// mimetype entry at offset 30.
func epubBytes() []byte {
	b := make([]byte, 64)
	copy(b, []byte{0x50, 0x4B, 0x03, 0x04})
	copy(b[30:], []byte("mimetypeapplication/epub+zip"))
	return b
}

func pngBytes() []byte {
	return []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
}

func TestDirectoryURL_ExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	u, err := DirectoryURL(dir)
	if err != nil {
		t.Fatalf("DirectoryURL returned error: %v", err)
	}
	if u.Scheme != "file" {
		t.Fatalf("unexpected scheme: %s", u.Scheme)
	}
	if FilePath(u) != dir {
		t.Fatalf("unexpected path: %s", FilePath(u))
	}
}

func TestDirectoryURL_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := DirectoryURL(file); err == nil {
		t.Fatal("expected error for a file path")
	}
	if _, err := DirectoryURL(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for a missing path")
	}
}

func TestSaveBytes_MatchingExtension(t *testing.T) {
	dir := t.TempDir()
	u := FileURL(dir)

	if err := SaveBytes(epubBytes(), u, "book.epub"); err != nil {
		t.Fatalf("SaveBytes returned error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "book.epub"))
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if len(data) != 64 {
		t.Fatalf("unexpected file size: %d", len(data))
	}
}

func TestSaveBytes_ExtensionMismatch(t *testing.T) {
	dir := t.TempDir()
	u := FileURL(dir)

	err := SaveBytes(pngBytes(), u, "book.epub")
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	if !strings.Contains(err.Error(), "was not downloaded properly") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "book.epub")); !os.IsNotExist(statErr) {
		t.Fatal("file must not be written on mismatch")
	}
}

func TestSaveBytes_UnrecognizedBytes(t *testing.T) {
	dir := t.TempDir()
	err := SaveBytes([]byte("just some text"), FileURL(dir), "notes.txt")
	if err == nil {
		t.Fatal("expected error for unrecognized content")
	}
}

func TestFilenameFromContentDisposition(t *testing.T) {
	name, ok := FilenameFromContentDisposition("attachment; filename=foo%20bar.pdf")
	if !ok {
		t.Fatal("expected a filename")
	}
	if name != "foo bar.pdf" {
		t.Fatalf("unexpected filename: %q", name)
	}
}

func TestFilenameFromContentDisposition_Absent(t *testing.T) {
	if _, ok := FilenameFromContentDisposition("inline"); ok {
		t.Fatal("expected no filename")
	}
	if _, ok := FilenameFromContentDisposition(""); ok {
		t.Fatal("expected no filename for empty header")
	}
}

func TestRenameWithinDir(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.epub")
	if err := os.WriteFile(old, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// the new name may arrive as a full path; only its base is used
	if err := RenameWithinDir(old, "/somewhere/else/new.epub"); err != nil {
		t.Fatalf("RenameWithinDir returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "new.epub")); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.epub"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := ReadDir(FileURL(dir))
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %v", names)
	}
}
