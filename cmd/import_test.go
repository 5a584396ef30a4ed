package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inkframe/inkframe/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// TestCollectSourcesFiltersByExtension verifies directory walking keeps
// only photo files.
func TestCollectSourcesFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"), "x")
	writeFile(t, filepath.Join(dir, "sub", "b.PNG"), "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")

	got, err := collectSources([]string{dir})
	if err != nil {
		t.Fatalf("collectSources: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("found %d files %v, want 2", len(got), got)
	}
}

// TestCollectSourcesExplicitFile verifies a directly named file is kept
// regardless of extension filtering.
func TestCollectSourcesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odd.tiff")
	writeFile(t, path, "x")

	got, err := collectSources([]string{path})
	if err != nil {
		t.Fatalf("collectSources: %v", err)
	}
	if len(got) != 1 || got[0] != path {
		t.Errorf("got %v, want [%s]", got, path)
	}
}

// TestImportOne verifies a photo is copied into the library and recorded.
func TestImportOne(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "pic.jpg")
	writeFile(t, src, "pretend jpeg")

	st, err := store.Open(filepath.Join(dir, "photos.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()

	photoDir := filepath.Join(dir, "photos")
	if err := os.MkdirAll(photoDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := importOne(st, photoDir, src); err != nil {
		t.Fatalf("importOne: %v", err)
	}

	photos, err := st.List(0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("got %d photos, want 1", len(photos))
	}
	p := photos[0]
	if p.MimeType != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", p.MimeType)
	}
	if p.FileSize != int64(len("pretend jpeg")) {
		t.Errorf("size = %d, want %d", p.FileSize, len("pretend jpeg"))
	}
	if _, err := os.Stat(p.DisplayPath); err != nil {
		t.Errorf("copied file missing: %v", err)
	}
}

// TestImportOneRejectsUnknownType verifies unsupported extensions fail
// without touching the store.
func TestImportOneRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.pdf")
	writeFile(t, src, "x")

	st, err := store.Open(filepath.Join(dir, "photos.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()

	if err := importOne(st, dir, src); err == nil {
		t.Fatal("importOne accepted a pdf")
	}
	count, err := st.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
