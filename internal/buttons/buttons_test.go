package buttons

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/inkframe/inkframe/pkg/logger"
)

// pinFs is a MemMapFs with all four pins released.
func pinFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, pin := range []int{PinInfo, PinPrev, PinNext, PinSetup} {
		setPin(t, fs, pin, false)
	}
	return fs
}

// setPin writes a pin value file; pressed pins read low.
func setPin(t *testing.T, fs afero.Fs, pin int, pressed bool) {
	t.Helper()
	val := "1\n"
	if pressed {
		val = "0\n"
	}
	path := fmt.Sprintf("/sys/class/gpio/gpio%d/value", pin)
	if err := afero.WriteFile(fs, path, []byte(val), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestPoller(fs afero.Fs, h Handlers) *Poller {
	p := NewPoller(fs, "/sys/class/gpio", h, logger.NewNopLogger())
	p.PollInterval = 5 * time.Millisecond
	p.Debounce = 20 * time.Millisecond
	p.HoldTime = 100 * time.Millisecond
	return p
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

// TestNextButtonFires verifies a press on the next pin dispatches the
// Next handler.
func TestNextButtonFires(t *testing.T) {
	fs := pinFs(t)
	next := make(chan struct{}, 8)
	p := newTestPoller(fs, Handlers{Next: func() { next <- struct{}{} }})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	setPin(t, fs, PinNext, true)
	waitFor(t, next, "next handler")
}

// TestDebounceCollapsesHold verifies holding a simple button down fires
// the handler once per debounce window, not once per poll.
func TestDebounceCollapsesHold(t *testing.T) {
	fs := pinFs(t)
	prev := make(chan struct{}, 64)
	p := newTestPoller(fs, Handlers{Prev: func() { prev <- struct{}{} }})
	p.Debounce = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	setPin(t, fs, PinPrev, true)
	waitFor(t, prev, "prev handler")

	// With the debounce window effectively infinite, no second event may
	// arrive no matter how long the button is held.
	select {
	case <-prev:
		t.Fatal("debounce did not collapse a held button")
	case <-time.After(100 * time.Millisecond):
	}
}

// TestSetupShortPress verifies a short press on the setup pin fires Setup
// and not Reboot.
func TestSetupShortPress(t *testing.T) {
	fs := pinFs(t)
	setup := make(chan struct{}, 8)
	reboot := make(chan struct{}, 8)
	p := newTestPoller(fs, Handlers{
		Setup:  func() { setup <- struct{}{} },
		Reboot: func() { reboot <- struct{}{} },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	setPin(t, fs, PinSetup, true)
	time.Sleep(30 * time.Millisecond) // well under HoldTime
	setPin(t, fs, PinSetup, false)

	waitFor(t, setup, "setup handler")
	select {
	case <-reboot:
		t.Fatal("short press fired reboot")
	case <-time.After(50 * time.Millisecond):
	}
}

// TestSetupLongHold verifies holding the setup pin past HoldTime fires
// Reboot and suppresses the short-press Setup event.
func TestSetupLongHold(t *testing.T) {
	fs := pinFs(t)
	setup := make(chan struct{}, 8)
	reboot := make(chan struct{}, 8)
	p := newTestPoller(fs, Handlers{
		Setup:  func() { setup <- struct{}{} },
		Reboot: func() { reboot <- struct{}{} },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	setPin(t, fs, PinSetup, true)
	waitFor(t, reboot, "reboot handler")
	setPin(t, fs, PinSetup, false)

	select {
	case <-setup:
		t.Fatal("long hold also fired setup")
	case <-time.After(50 * time.Millisecond):
	}
}

// TestMissingPinFilesAreTolerated verifies the loop keeps polling when a
// pin file cannot be read.
func TestMissingPinFilesAreTolerated(t *testing.T) {
	fs := afero.NewMemMapFs() // no pin files at all
	setPin(t, fs, PinNext, false)

	next := make(chan struct{}, 8)
	log := logger.NewMockLogger()
	p := NewPoller(fs, "/sys/class/gpio", Handlers{Next: func() { next <- struct{}{} }}, log)
	p.PollInterval = 5 * time.Millisecond
	p.Debounce = 20 * time.Millisecond
	p.HoldTime = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	setPin(t, fs, PinNext, true)
	waitFor(t, next, "next handler despite missing sibling pins")
}
