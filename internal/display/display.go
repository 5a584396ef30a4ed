// Package display abstracts the e-ink panel. The panel is a slow,
// exclusively-owned resource: a full refresh takes tens of seconds, so
// callers fetch an identifier from the cycling engine first and render
// outside its lock. Rendering itself lives in a helper process; this
// package only shells out to it.
package display

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/inkframe/inkframe/pkg/logger"
)

// DefaultTimeout bounds a single render. An unresponsive panel fails the
// render instead of wedging the caller.
const DefaultTimeout = 90 * time.Second

// Options carries per-render display preferences from settings.
type Options struct {
	Saturation  float64
	FitMode     string
	Orientation string
}

// Info is the content of the device info screen.
type Info struct {
	PhotoCount int
	WifiStatus string
	IPAddress  string
	APMode     bool
}

// Renderer drives the panel. Implementations must be safe for concurrent
// calls; the panel itself is used one call at a time.
type Renderer interface {
	// Render shows the photo identified by id.
	Render(ctx context.Context, id string, opts Options) error
	// ShowInfo draws the info screen.
	ShowInfo(ctx context.Context, info Info) error
	// ShowMessage draws a title and message, e.g. "Rebooting...".
	ShowMessage(ctx context.Context, title, message string) error
	// Busy reports whether a render is currently in progress.
	Busy() bool
}

// HelperRenderer invokes the render helper binary that owns the panel
// hardware. One render at a time; overlapping calls wait on the mutex so
// the panel never sees interleaved refreshes.
type HelperRenderer struct {
	helper  string
	timeout time.Duration
	log     logger.Logger

	mu   sync.Mutex
	busy bool
}

// NewHelperRenderer creates a renderer around the helper binary at path.
// timeout <= 0 uses DefaultTimeout.
func NewHelperRenderer(path string, timeout time.Duration, log logger.Logger) *HelperRenderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HelperRenderer{helper: path, timeout: timeout, log: log}
}

func (r *HelperRenderer) run(ctx context.Context, args ...string) error {
	r.mu.Lock()
	r.busy = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.helper, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("render helper failed: %w (output: %s)", err, out)
	}
	return nil
}

// Render shows a photo on the panel.
func (r *HelperRenderer) Render(ctx context.Context, id string, opts Options) error {
	return r.run(ctx, "show",
		"--saturation", strconv.FormatFloat(opts.Saturation, 'f', 2, 64),
		"--fit", opts.FitMode,
		"--orientation", opts.Orientation,
		id,
	)
}

// ShowInfo draws the info screen.
func (r *HelperRenderer) ShowInfo(ctx context.Context, info Info) error {
	args := []string{"info",
		"--photos", strconv.Itoa(info.PhotoCount),
		"--wifi", info.WifiStatus,
		"--ip", info.IPAddress,
	}
	if info.APMode {
		args = append(args, "--ap-mode")
	}
	return r.run(ctx, args...)
}

// ShowMessage draws a title and message.
func (r *HelperRenderer) ShowMessage(ctx context.Context, title, message string) error {
	return r.run(ctx, "message", title, message)
}

// Busy reports whether a render is in progress.
func (r *HelperRenderer) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

// NopRenderer discards renders. Used when the daemon runs without a
// panel attached (development, tests).
type NopRenderer struct{}

// Render does nothing.
func (NopRenderer) Render(ctx context.Context, id string, opts Options) error { return nil }

// ShowInfo does nothing.
func (NopRenderer) ShowInfo(ctx context.Context, info Info) error { return nil }

// ShowMessage does nothing.
func (NopRenderer) ShowMessage(ctx context.Context, title, message string) error { return nil }

// Busy always reports false.
func (NopRenderer) Busy() bool { return false }

var (
	_ Renderer = (*HelperRenderer)(nil)
	_ Renderer = NopRenderer{}
)
