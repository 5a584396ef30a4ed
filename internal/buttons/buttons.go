// Package buttons polls the frame's four hardware buttons. The pins are
// pull-up inputs, so a pressed button reads low. Pin values are read
// through sysfs via afero, which keeps the loop testable without GPIO
// hardware.
package buttons

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/inkframe/inkframe/pkg/logger"
)

// Default button pin assignments (BCM numbering).
const (
	PinInfo  = 5  // info screen
	PinPrev  = 6  // previous photo
	PinNext  = 16 // next photo
	PinSetup = 24 // short press: setup mode, long hold: reboot
)

const (
	defaultPollInterval = 50 * time.Millisecond
	defaultDebounce     = 300 * time.Millisecond
	defaultHoldTime     = 2 * time.Second
)

// Handlers receives button events. Handlers run on their own goroutines
// so a slow e-ink render never stalls the poll loop; nil handlers are
// skipped.
type Handlers struct {
	Info   func()
	Prev   func()
	Next   func()
	Setup  func()
	Reboot func()
}

// Poller watches the button pins and dispatches events.
type Poller struct {
	fs       afero.Fs
	basePath string
	handlers Handlers
	log      logger.Logger

	// Overridable for tests; zero values use the defaults.
	PollInterval time.Duration
	Debounce     time.Duration
	HoldTime     time.Duration
}

// NewPoller creates a poller reading pin value files under basePath
// (normally /sys/class/gpio).
func NewPoller(fs afero.Fs, basePath string, handlers Handlers, log logger.Logger) *Poller {
	return &Poller{
		fs:           fs,
		basePath:     basePath,
		handlers:     handlers,
		log:          log,
		PollInterval: defaultPollInterval,
		Debounce:     defaultDebounce,
		HoldTime:     defaultHoldTime,
	}
}

// pressed reports whether the pin currently reads low. Read errors are
// logged once per poll and treated as "not pressed".
func (p *Poller) pressed(pin int) bool {
	path := fmt.Sprintf("%s/gpio%d/value", p.basePath, pin)
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		p.log.Warning("failed to read button pin %d: %v", pin, err)
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("0"))
}

func fire(h func()) {
	if h != nil {
		go h()
	}
}

// Run polls the buttons until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	lastPress := map[int]time.Time{}
	var setupDownSince time.Time

	ticker := time.NewTicker(p.PollInterval)
	defer ticker.Stop()

	simple := []struct {
		pin     int
		handler func()
	}{
		{PinInfo, p.handlers.Info},
		{PinPrev, p.handlers.Prev},
		{PinNext, p.handlers.Next},
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now()
		for _, b := range simple {
			if p.pressed(b.pin) && now.Sub(lastPress[b.pin]) > p.Debounce {
				lastPress[b.pin] = now
				p.log.Info("button on pin %d pressed", b.pin)
				fire(b.handler)
			}
		}

		// Setup button: fire Reboot after a long hold, Setup on a short
		// press detected at release.
		if p.pressed(PinSetup) {
			if setupDownSince.IsZero() {
				setupDownSince = now
			} else if now.Sub(setupDownSince) >= p.HoldTime {
				p.log.Info("setup button held, rebooting")
				fire(p.handlers.Reboot)
				setupDownSince = time.Time{}
			}
		} else if !setupDownSince.IsZero() {
			if now.Sub(setupDownSince) < p.HoldTime && now.Sub(lastPress[PinSetup]) > p.Debounce {
				lastPress[PinSetup] = now
				p.log.Info("setup button pressed")
				fire(p.handlers.Setup)
			}
			setupDownSince = time.Time{}
		}
	}
}
