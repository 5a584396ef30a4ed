package frame

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/inkframe/inkframe/internal/display"
	"github.com/inkframe/inkframe/internal/settings"
	"github.com/inkframe/inkframe/internal/slideshow"
	"github.com/inkframe/inkframe/internal/store"
	"github.com/inkframe/inkframe/internal/wifi"
	"github.com/inkframe/inkframe/pkg/framelib"
	"github.com/inkframe/inkframe/pkg/logger"
)

type testRig struct {
	svc      *Service
	store    *store.Store
	renderer *display.MockRenderer
	cancel   context.CancelFunc
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "photos.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := settings.NewStore(afero.NewMemMapFs(), "/config/settings.json", logger.NewNopLogger())
	renderer := &display.MockRenderer{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := &Service{
		Store:     st,
		Settings:  cfg,
		Renderer:  renderer,
		SetupMode: &framelib.Flag{},
		Wifi: wifi.NewManagerWithRunner(
			func(ctx context.Context, args ...string) (string, error) { return "", nil },
			logger.NewNopLogger(),
		),
		Log: logger.NewNopLogger(),
	}
	svc.Cycler = framelib.NewCycler(st, cfg, svc.Mode, logger.NewNopLogger())
	svc.Slideshow = slideshow.New(ctx, "", func() {
		_, _ = svc.Next(context.Background())
	}, nil, logger.NewNopLogger())

	return &testRig{svc: svc, store: st, renderer: renderer, cancel: cancel}
}

func (r *testRig) addPhoto(t *testing.T, name string) int64 {
	t.Helper()
	id, err := r.store.Add(store.Photo{
		Filename:      name + ".jpg",
		OriginalPath:  "/p/orig/" + name + ".jpg",
		DisplayPath:   "/p/disp/" + name + ".jpg",
		ThumbnailPath: "/p/thumb/" + name + ".jpg",
	})
	if err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
	return id
}

// TestNextRendersSelection verifies Next advances, renders the selected
// photo and reports it through OnShown.
func TestNextRendersSelection(t *testing.T) {
	rig := newTestRig(t)
	rig.addPhoto(t, "a")
	rig.addPhoto(t, "b")

	var shown []string
	rig.svc.OnShown = func(id string) { shown = append(shown, id) }

	id, err := rig.svc.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	rendered := rig.renderer.RenderedIDs()
	if len(rendered) != 1 || rendered[0] != id {
		t.Errorf("rendered %v, want [%s]", rendered, id)
	}
	if len(shown) != 1 || shown[0] != id {
		t.Errorf("OnShown got %v, want [%s]", shown, id)
	}
	if rig.svc.Cycler.Current() != id {
		t.Errorf("current = %q, want %q", rig.svc.Cycler.Current(), id)
	}
}

// TestNextEmptyLibrary verifies the empty-library outcome propagates and
// nothing is rendered.
func TestNextEmptyLibrary(t *testing.T) {
	rig := newTestRig(t)

	_, err := rig.svc.Next(context.Background())
	if !errors.Is(err, framelib.ErrEmptyLibrary) {
		t.Fatalf("expected ErrEmptyLibrary, got %v", err)
	}
	if len(rig.renderer.RenderedIDs()) != 0 {
		t.Error("render attempted with an empty library")
	}
}

// TestRenderFailureKeepsPosition verifies a failing panel does not roll
// back the cycling position.
func TestRenderFailureKeepsPosition(t *testing.T) {
	rig := newTestRig(t)
	rig.addPhoto(t, "a")
	rig.renderer.Err = errors.New("panel unplugged")

	id, err := rig.svc.Next(context.Background())
	if err == nil {
		t.Fatal("expected render error")
	}
	if id == "" {
		t.Fatal("identifier should be returned even when the render fails")
	}
	if rig.svc.Cycler.Current() != id {
		t.Error("cycling position rolled back after render failure")
	}
}

// TestShowByPhotoID verifies Show resolves the database id to a display
// identifier and jumps to it.
func TestShowByPhotoID(t *testing.T) {
	rig := newTestRig(t)
	rig.addPhoto(t, "a")
	target := rig.addPhoto(t, "b")

	id, err := rig.svc.Show(context.Background(), target)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if id != "/p/disp/b.jpg" {
		t.Errorf("Show selected %q, want /p/disp/b.jpg", id)
	}
	if _, err := rig.svc.Show(context.Background(), 9999); !errors.Is(err, store.ErrPhotoNotFound) {
		t.Errorf("Show unknown id: %v, want ErrPhotoNotFound", err)
	}
}

// TestPrevAfterNext verifies Prev returns to the photo shown before.
func TestPrevAfterNext(t *testing.T) {
	rig := newTestRig(t)
	rig.addPhoto(t, "a")
	rig.addPhoto(t, "b")
	rig.addPhoto(t, "c")

	first, err := rig.svc.Next(context.Background())
	if err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if _, err := rig.svc.Next(context.Background()); err != nil {
		t.Fatalf("second Next: %v", err)
	}
	back, err := rig.svc.Prev(context.Background())
	if err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if back != first {
		t.Errorf("Prev = %q, want %q", back, first)
	}
}

// TestSetupModeIdempotent verifies entering setup mode twice only flips
// the flag once and leaving restores it.
func TestSetupModeIdempotent(t *testing.T) {
	rig := newTestRig(t)

	rig.svc.EnterSetupMode(context.Background())
	rig.svc.EnterSetupMode(context.Background())
	if !rig.svc.SetupMode.Get() {
		t.Fatal("setup mode flag should be set")
	}
	if len(rig.renderer.Infos) != 1 {
		t.Errorf("info screen drawn %d times, want 1", len(rig.renderer.Infos))
	}

	rig.svc.LeaveSetupMode(context.Background())
	if rig.svc.SetupMode.Get() {
		t.Fatal("setup mode flag should be cleared")
	}
}

// TestSlideshowStartAdvances verifies starting the slideshow immediately
// shows a photo and reports running.
func TestSlideshowStartAdvances(t *testing.T) {
	rig := newTestRig(t)
	rig.addPhoto(t, "a")

	if err := rig.svc.StartSlideshow(context.Background()); err != nil {
		t.Fatalf("StartSlideshow: %v", err)
	}
	if len(rig.renderer.RenderedIDs()) == 0 {
		t.Error("starting the slideshow should render immediately")
	}

	st := rig.svc.Slideshow.Status()
	if !st.Running {
		t.Error("slideshow should report running")
	}
	if st.IntervalMinutes != settings.DefaultInterval {
		t.Errorf("interval = %d, want default %d", st.IntervalMinutes, settings.DefaultInterval)
	}

	rig.svc.StopSlideshow()
	if rig.svc.Slideshow.Status().Running {
		t.Error("slideshow should report stopped")
	}
}

// TestSystemStatus verifies the aggregate includes counts, current photo
// and display preferences.
func TestSystemStatus(t *testing.T) {
	rig := newTestRig(t)
	rig.addPhoto(t, "a")

	if _, err := rig.svc.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}

	st := rig.svc.SystemStatus(context.Background())
	if st.Photos.Count != 1 {
		t.Errorf("photo count = %d, want 1", st.Photos.Count)
	}
	if st.Current != "/p/disp/a.jpg" {
		t.Errorf("current = %q", st.Current)
	}
	if st.Display.FitMode != "contain" {
		t.Errorf("display prefs missing from status: %+v", st.Display)
	}
	if st.Slideshow.Order != "random" {
		t.Errorf("slideshow order = %q", st.Slideshow.Order)
	}
}
