package ftpbridge

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkframe/inkframe/internal/store"
	"github.com/inkframe/inkframe/pkg/logger"
)

func newTestBridge(t *testing.T, hash string) (*Bridge, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "photos.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	b, err := New(Config{
		Addr:         "127.0.0.1:0",
		PhotoDir:     filepath.Join(dir, "photos"),
		PasswordHash: func() string { return hash },
	}, st, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b, st
}

// TestAuthOpenWithoutHash verifies any password passes when no admin hash
// is configured.
func TestAuthOpenWithoutHash(t *testing.T) {
	b, _ := newTestBridge(t, "")

	if _, err := b.AuthUser(nil, "frame", "anything"); err != nil {
		t.Errorf("AuthUser without hash: %v", err)
	}
	if _, err := b.AuthUser(nil, "wronguser", "anything"); err == nil {
		t.Error("AuthUser accepted an unknown user")
	}
}

// TestAuthChecksHash verifies password checking against the admin hash.
func TestAuthChecksHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	b, _ := newTestBridge(t, string(hash))

	if _, err := b.AuthUser(nil, "frame", "hunter2"); err != nil {
		t.Errorf("AuthUser with correct password: %v", err)
	}
	if _, err := b.AuthUser(nil, "frame", "wrong"); err == nil {
		t.Error("AuthUser accepted a wrong password")
	}
}

// TestUploadRegistersPhoto verifies a write-then-close through the bridge
// filesystem lands in the photo store.
func TestUploadRegistersPhoto(t *testing.T) {
	b, st := newTestBridge(t, "")

	f, err := b.fs.Create("holiday.jpg")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.Write([]byte("pretend jpeg bytes")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	count, err := st.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	photos, err := st.List(0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if photos[0].Filename != "holiday.jpg" {
		t.Errorf("filename = %q, want holiday.jpg", photos[0].Filename)
	}
	if photos[0].FileSize == 0 {
		t.Error("file size not recorded")
	}
	if _, err := os.Stat(photos[0].DisplayPath); err != nil {
		t.Errorf("registered path missing on disk: %v", err)
	}
}

// TestReuploadIgnored verifies overwriting a known file does not create a
// duplicate row.
func TestReuploadIgnored(t *testing.T) {
	b, st := newTestBridge(t, "")

	for i := 0; i < 2; i++ {
		f, err := b.fs.Create("same.jpg")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		f.Write([]byte("bytes"))
		if err := f.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	count, err := st.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after re-upload", count)
	}
}

// TestReadOnlyOpenDoesNotRegister verifies plain reads never touch the
// store.
func TestReadOnlyOpenDoesNotRegister(t *testing.T) {
	b, st := newTestBridge(t, "")

	f, err := b.fs.Create("pic.jpg")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.Write([]byte("bytes"))
	f.Close()

	r, err := b.fs.OpenFile("pic.jpg", os.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	r.Close()

	count, err := st.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (read must not register)", count)
	}
}
