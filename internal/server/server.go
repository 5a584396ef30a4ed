// Package server hosts the daemon's two control surfaces: the HTTP
// web/API server used by the gallery UI, and the JSON-RPC control socket
// used by the CLI. Both are thin bindings over the frame service; all
// scheduling decisions stay in the cycling engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/netutil"

	"github.com/inkframe/inkframe/internal/frame"
	"github.com/inkframe/inkframe/pkg/logger"
)

// Config holds the web server settings.
type Config struct {
	Addr     string
	PhotoDir string
	// MaxConns caps concurrent HTTP connections; the frame is a small
	// device. Zero means no cap.
	MaxConns int
}

// WebServer is the HTTP surface of the daemon.
type WebServer struct {
	cfg Config
	svc *frame.Service
	hub *Hub
	log logger.Logger

	server *http.Server
}

// NewWebServer creates the web server and wires the photo-changed event
// feed into the frame service.
func NewWebServer(cfg Config, svc *frame.Service, log logger.Logger) *WebServer {
	s := &WebServer{
		cfg: cfg,
		svc: svc,
		hub: NewHub(log),
		log: log,
	}
	svc.OnShown = func(id string) {
		s.hub.Broadcast(Event{Type: "photo_changed", ID: id})
	}
	return s
}

// Router builds the HTTP routes.
func (s *WebServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/photos", s.handleListPhotos)
	r.Post("/api/photos/upload", s.handleUpload)
	r.With(s.requireAuth).Delete("/api/photos/{id}", s.handleDeletePhoto)
	r.With(s.requireAuth).Post("/api/photos/delete-bulk", s.handleDeleteBulk)
	r.Post("/api/photos/{id}/favorite", s.handleToggleFavorite)

	r.Post("/api/display/next", s.handleNext)
	r.Post("/api/display/prev", s.handlePrev)
	r.Post("/api/display/show/{id}", s.handleShow)
	r.Post("/api/display/info", s.handleInfo)

	r.Post("/api/slideshow/start", s.handleSlideshowStart)
	r.Post("/api/slideshow/stop", s.handleSlideshowStop)

	r.Get("/api/settings", s.handleGetSettings)
	r.With(s.requireAuth).Post("/api/settings", s.handleUpdateSettings)
	r.Get("/api/status", s.handleStatus)

	r.Get("/api/wifi/scan", s.handleWifiScan)
	r.Post("/api/wifi/connect", s.handleWifiConnect)

	r.Get("/events", s.hub.ServeHTTP)

	// Captive portal probes redirect to wifi setup while in setup mode.
	for _, path := range []string{"/hotspot-detect", "/generate_204", "/ncsi.txt"} {
		r.Get(path, s.handlePortalProbe)
	}

	return r
}

// Start listens and serves until Shutdown is called.
func (s *WebServer) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}

	s.server = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("web server listening on %s", ln.Addr())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server and disconnects event clients.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
