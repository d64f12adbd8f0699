package connection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"opdscat/internal/fsutil"
	"opdscat/internal/opds"
)

func localFixture(t *testing.T) (*Local, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.epub"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	return NewLocal(fsutil.FileURL(dir)), dir
}

func TestLocalGetPage_ClassifiesEntries(t *testing.T) {
	l, dir := localFixture(t)

	entries, err := l.GetPage(context.Background(), l.CurrentAddress())
	if err != nil {
		t.Fatalf("GetPage returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	file, ok := entries[0].(opds.File)
	if !ok {
		t.Fatalf("expected a file first, got %T", entries[0])
	}
	if file.Name != "a.epub" || fsutil.FilePath(file.URL) != filepath.Join(dir, "a.epub") {
		t.Fatalf("unexpected file entry: %+v", file)
	}

	sub, ok := entries[1].(opds.Directory)
	if !ok {
		t.Fatalf("expected a directory second, got %T", entries[1])
	}
	if sub.Name != "sub" || fsutil.FilePath(sub.URL) != filepath.Join(dir, "sub") {
		t.Fatalf("unexpected directory entry: %+v", sub)
	}
}

func TestLocalNavigation_HistoryStack(t *testing.T) {
	l, dir := localFixture(t)
	ctx := context.Background()

	subURL := fsutil.FileURL(filepath.Join(dir, "sub"))
	if _, err := l.NavigateTo(ctx, subURL); err != nil {
		t.Fatalf("NavigateTo returned error: %v", err)
	}
	if l.CurrentAddress().String() != subURL.String() {
		t.Fatalf("current address must follow navigation: %s", l.CurrentAddress())
	}

	rootURL := fsutil.FileURL(dir)
	if _, err := l.NavigateTo(ctx, rootURL); err != nil {
		t.Fatalf("NavigateTo returned error: %v", err)
	}
	if _, err := l.Back(ctx); err != nil {
		t.Fatalf("Back returned error: %v", err)
	}
	if l.CurrentAddress().String() != subURL.String() {
		t.Fatalf("back must restore the previous address: %s", l.CurrentAddress())
	}
}

func TestLocalBack_EmptyHistoryFails(t *testing.T) {
	l, _ := localFixture(t)
	if _, err := l.Back(context.Background()); err == nil {
		t.Fatal("expected error for back on empty history")
	}
}

func TestLocalNavigateTo_PushesEvenOnFailure(t *testing.T) {
	l, dir := localFixture(t)
	missing := fsutil.FileURL(filepath.Join(dir, "missing"))

	if _, err := l.NavigateTo(context.Background(), missing); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if l.CurrentAddress().String() != missing.String() {
		t.Fatalf("failed navigation must stay on the history stack: %s", l.CurrentAddress())
	}
}

func TestLocalSearch_FiltersAndPushesHistory(t *testing.T) {
	l, _ := localFixture(t)

	entries, err := l.Search(context.Background(), "a.ep")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 match, got %d", len(entries))
	}
	if entries[0].Title() != "a.epub" {
		t.Fatalf("unexpected match: %s", entries[0].Title())
	}

	// the search pushed one history entry, so back succeeds once
	if _, err := l.Back(context.Background()); err != nil {
		t.Fatalf("Back after search returned error: %v", err)
	}
	if _, err := l.Back(context.Background()); err == nil {
		t.Fatal("expected empty history after unwinding the search")
	}
}

func TestLocalGetImageBytes_Empty(t *testing.T) {
	l, _ := localFixture(t)
	if b := l.GetImageBytes(context.Background(), l.CurrentAddress()); len(b) != 0 {
		t.Fatalf("expected empty bytes, got %d", len(b))
	}
}
