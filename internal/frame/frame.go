// Package frame is the service layer of the daemon: it connects the
// cycling engine to the photo store, settings, display, slideshow job and
// wifi manager, and exposes the operations the web API, the control
// socket and the hardware buttons all share.
//
// Every operation asks the cycling engine for an identifier first and
// performs the slow e-ink render afterwards, outside the engine's lock,
// so rendering latency never blocks other schedule mutations.
package frame

import (
	"context"
	"time"

	"github.com/inkframe/inkframe/internal/display"
	"github.com/inkframe/inkframe/internal/settings"
	"github.com/inkframe/inkframe/internal/slideshow"
	"github.com/inkframe/inkframe/internal/store"
	"github.com/inkframe/inkframe/internal/wifi"
	"github.com/inkframe/inkframe/pkg/framelib"
	"github.com/inkframe/inkframe/pkg/logger"
)

// Service exposes the frame operations shared by all entry points.
type Service struct {
	Cycler    *framelib.Cycler
	Store     *store.Store
	Settings  *settings.Store
	Renderer  display.Renderer
	Slideshow *slideshow.Runner
	SetupMode *framelib.Flag
	Wifi      *wifi.Manager
	Log       logger.Logger

	// OnShown, when set, is invoked with the identifier after every
	// successful render. The web server uses it to push change events.
	OnShown func(id string)
}

// Status is the aggregated system status for the web UI and CLI.
type Status struct {
	Wifi struct {
		Connected bool   `json:"connected"`
		SSID      string `json:"ssid"`
		APMode    bool   `json:"ap_mode"`
	} `json:"wifi"`
	Slideshow struct {
		slideshow.Status
		Enabled    bool   `json:"enabled"`
		Order      string `json:"order"`
		PhotoCount int    `json:"photo_count"`
	} `json:"slideshow"`
	Photos struct {
		Count int `json:"count"`
	} `json:"photos"`
	Display     settings.Display `json:"display"`
	DisplayBusy bool             `json:"display_busy"`
	Current     string           `json:"current"`
}

func (s *Service) renderOpts() display.Options {
	st := s.Settings.Load()
	return display.Options{
		Saturation:  st.Display.Saturation,
		FitMode:     st.Display.FitMode,
		Orientation: st.Display.Orientation,
	}
}

// render shows the photo and reports the identifier to OnShown. A render
// failure is returned to the caller but the cycling position has already
// moved; the next operation continues from the new position.
func (s *Service) render(ctx context.Context, id string) error {
	if err := s.Renderer.Render(ctx, id, s.renderOpts()); err != nil {
		s.Log.Error("failed to render %q: %v", id, err)
		return err
	}
	if s.OnShown != nil {
		s.OnShown(id)
	}
	return nil
}

// Next advances to and renders the next photo, returning its identifier.
func (s *Service) Next(ctx context.Context) (string, error) {
	id, err := s.Cycler.Advance()
	if err != nil {
		return "", err
	}
	return id, s.render(ctx, id)
}

// Prev steps back to and renders the previously shown photo.
func (s *Service) Prev(ctx context.Context) (string, error) {
	id, err := s.Cycler.Retreat()
	if err != nil {
		return "", err
	}
	return id, s.render(ctx, id)
}

// Show jumps to a specific photo by its database id and renders it.
func (s *Service) Show(ctx context.Context, photoID int64) (string, error) {
	p, err := s.Store.Get(photoID)
	if err != nil {
		return "", err
	}
	id, err := s.Cycler.JumpTo(p.DisplayPath)
	if err != nil {
		return "", err
	}
	return id, s.render(ctx, id)
}

// Redisplay re-renders the current photo without moving the cycling
// position. E-ink panels are refreshed this way on a schedule to clear
// ghosting; with nothing shown yet it advances instead.
func (s *Service) Redisplay(ctx context.Context) error {
	id := s.Cycler.Current()
	if id == "" {
		_, err := s.Next(ctx)
		return err
	}
	return s.render(ctx, id)
}

// ShowInfo renders the device info screen.
func (s *Service) ShowInfo(ctx context.Context) error {
	count, err := s.Store.Count()
	if err != nil {
		s.Log.Warning("failed to count photos for info screen: %v", err)
	}
	ssid := s.Wifi.CurrentSSID(ctx)
	if ssid == "" {
		ssid = "Not connected"
	}
	return s.Renderer.ShowInfo(ctx, display.Info{
		PhotoCount: count,
		WifiStatus: ssid,
		IPAddress:  wifi.IPAddress(),
		APMode:     s.SetupMode.Get(),
	})
}

// StartSlideshow begins automatic cycling using the configured interval
// and immediately shows the next photo.
func (s *Service) StartSlideshow(ctx context.Context) error {
	st := s.Settings.Load()
	minutes := settings.NormalizeInterval(st.Slideshow.IntervalMinutes)
	s.Slideshow.Start(time.Duration(minutes) * time.Minute)
	s.Log.Info("slideshow started with %dmin interval", minutes)

	if _, err := s.Next(ctx); err != nil {
		// An empty library is fine here; the timer keeps running and the
		// first upload will be picked up on the next tick.
		s.Log.Warning("slideshow started but first advance failed: %v", err)
	}
	return nil
}

// StopSlideshow halts automatic cycling.
func (s *Service) StopSlideshow() {
	s.Slideshow.Stop()
	s.Log.Info("slideshow stopped")
}

// EnterSetupMode flips the shared setup flag and brings up the hotspot.
// Remains a no-op while already in setup mode.
func (s *Service) EnterSetupMode(ctx context.Context) {
	if !s.SetupMode.CompareAndSet(false, true) {
		return
	}
	if err := s.Wifi.StartAP(ctx); err != nil {
		s.Log.Error("failed to enter setup mode: %v", err)
		s.SetupMode.Set(false)
		return
	}
	if err := s.Renderer.ShowInfo(ctx, display.Info{APMode: true, WifiStatus: wifi.APName}); err != nil {
		s.Log.Warning("failed to draw setup info screen: %v", err)
	}
	s.Log.Info("entered setup mode")
}

// LeaveSetupMode clears the setup flag and tears down the hotspot.
func (s *Service) LeaveSetupMode(ctx context.Context) {
	if !s.SetupMode.CompareAndSet(true, false) {
		return
	}
	if err := s.Wifi.StopAP(ctx); err != nil {
		s.Log.Warning("failed to stop hotspot: %v", err)
	}
	s.Log.Info("left setup mode")
}

// SystemStatus aggregates the full status report.
func (s *Service) SystemStatus(ctx context.Context) Status {
	var out Status

	st := s.Settings.Load()
	out.Display = st.Display

	count, err := s.Store.Count()
	if err != nil {
		s.Log.Warning("failed to count photos: %v", err)
	}
	out.Photos.Count = count

	out.Wifi.SSID = s.Wifi.CurrentSSID(ctx)
	out.Wifi.Connected = out.Wifi.SSID != ""
	out.Wifi.APMode = s.SetupMode.Get() || s.Wifi.APMode(ctx)

	out.Slideshow.Status = s.Slideshow.Status()
	out.Slideshow.Enabled = st.Slideshow.Enabled
	out.Slideshow.Order = st.Slideshow.Order
	out.Slideshow.PhotoCount = count

	out.DisplayBusy = s.Renderer.Busy()
	out.Current = s.Cycler.Current()
	return out
}

// Mode returns the configured ordering mode; handed to the cycler so
// order changes in settings apply on the next step.
func (s *Service) Mode() framelib.Mode {
	return framelib.ParseMode(s.Settings.Load().Slideshow.Order)
}
