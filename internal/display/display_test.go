package display

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/inkframe/inkframe/pkg/logger"
)

// TestHelperRendererRuns verifies arguments reach the helper and success
// is reported. Uses /bin/true as a stand-in helper.
func TestHelperRendererRuns(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix helper binaries")
	}
	r := NewHelperRenderer("/bin/true", 0, logger.NewNopLogger())

	err := r.Render(context.Background(), "/photos/display/a.jpg", Options{
		Saturation:  0.5,
		FitMode:     "contain",
		Orientation: "horizontal",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if r.Busy() {
		t.Error("renderer still busy after Render returned")
	}
}

// TestHelperRendererFailure verifies a failing helper surfaces an error.
func TestHelperRendererFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix helper binaries")
	}
	r := NewHelperRenderer("/bin/false", 0, logger.NewNopLogger())
	if err := r.ShowMessage(context.Background(), "Rebooting", "Please wait"); err == nil {
		t.Fatal("expected error from failing helper")
	}
}

// TestHelperRendererTimeout verifies a hung helper is killed by the
// render timeout instead of blocking forever.
func TestHelperRendererTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix helper binaries")
	}
	r := NewHelperRenderer("/bin/sleep", 50*time.Millisecond, logger.NewNopLogger())

	start := time.Now()
	err := r.run(context.Background(), "10")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout took %v, renderer hung", elapsed)
	}
}

// TestMockRendererRecords verifies the test double records calls.
func TestMockRendererRecords(t *testing.T) {
	m := &MockRenderer{}
	if err := m.Render(context.Background(), "x", Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := m.ShowInfo(context.Background(), Info{PhotoCount: 3}); err != nil {
		t.Fatalf("ShowInfo: %v", err)
	}
	ids := m.RenderedIDs()
	if len(ids) != 1 || ids[0] != "x" {
		t.Errorf("RenderedIDs = %v", ids)
	}
	if len(m.Infos) != 1 || m.Infos[0].PhotoCount != 3 {
		t.Errorf("Infos = %+v", m.Infos)
	}
}
