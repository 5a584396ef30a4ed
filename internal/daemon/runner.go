// Package daemon composes the frame's long-running pieces: photo store,
// settings, display, cycling engine, web server, control socket, FTP
// bridge and hardware buttons. It owns startup order, single-instance
// locking and graceful shutdown.
package daemon

import (
	"context"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/inkframe/inkframe/internal/buttons"
	"github.com/inkframe/inkframe/internal/display"
	"github.com/inkframe/inkframe/internal/frame"
	"github.com/inkframe/inkframe/internal/ftpbridge"
	"github.com/inkframe/inkframe/internal/server"
	"github.com/inkframe/inkframe/internal/settings"
	"github.com/inkframe/inkframe/internal/slideshow"
	"github.com/inkframe/inkframe/internal/store"
	"github.com/inkframe/inkframe/internal/wifi"
	"github.com/inkframe/inkframe/pkg/framelib"
	"github.com/inkframe/inkframe/pkg/logger"
)

// Config holds the daemon's wiring.
type Config struct {
	// DataDir holds the database, settings file and pid file.
	DataDir string
	// PhotoDir holds the photo files served and displayed.
	PhotoDir string

	HTTPAddr string
	// FTPAddr enables the FTP upload bridge when non-empty.
	FTPAddr string
	// SocketPath is the CLI control socket.
	SocketPath string

	// DisplayHelper is the renderer binary; empty runs headless.
	DisplayHelper string
	// GPIOPath enables the hardware buttons when non-empty.
	GPIOPath string
	// RefreshCron re-renders the current photo on a schedule to clear
	// e-ink ghosting. Empty disables it.
	RefreshCron string

	// MaxConns caps concurrent HTTP connections. Zero means no cap.
	MaxConns int

	Version string
	Commit  string
}

// Runner is a composed daemon ready to Run.
type Runner struct {
	cfg Config
	log logger.Logger

	svc *frame.Service
	web *server.WebServer
	rpc *server.RPCServer
	ftp *ftpbridge.Bridge

	store  *store.Store
	cancel context.CancelFunc
}

// New builds the daemon. Nothing starts listening until Run.
func New(cfg Config, log logger.Logger) (*Runner, error) {
	st, err := store.Open(filepath.Join(cfg.DataDir, "photos.db"))
	if err != nil {
		return nil, err
	}

	cfgStore := settings.NewStore(afero.NewOsFs(), filepath.Join(cfg.DataDir, "settings.json"), log)

	var renderer display.Renderer = display.NopRenderer{}
	if cfg.DisplayHelper != "" {
		renderer = display.NewHelperRenderer(cfg.DisplayHelper, display.DefaultTimeout, log)
	}

	svc := &frame.Service{
		Store:     st,
		Settings:  cfgStore,
		Renderer:  renderer,
		SetupMode: &framelib.Flag{},
		Wifi:      wifi.NewManager(log),
		Log:       log,
	}
	svc.Cycler = framelib.NewCycler(st, cfgStore, svc.Mode, log)

	r := &Runner{
		cfg:   cfg,
		log:   log,
		svc:   svc,
		store: st,
	}
	r.web = server.NewWebServer(server.Config{
		Addr:     cfg.HTTPAddr,
		PhotoDir: cfg.PhotoDir,
		MaxConns: cfg.MaxConns,
	}, svc, log)
	r.rpc = server.NewRPCServer(cfg.SocketPath, cfg.Version, cfg.Commit, svc, r.Stop, log)

	if cfg.FTPAddr != "" {
		r.ftp, err = ftpbridge.New(ftpbridge.Config{
			Addr:         cfg.FTPAddr,
			PhotoDir:     cfg.PhotoDir,
			PasswordHash: func() string { return cfgStore.Load().Web.PasswordHash },
		}, st, log)
		if err != nil {
			st.Close()
			return nil, err
		}
	}
	return r, nil
}

// Run starts every surface and blocks until the context is canceled or a
// listener fails, then shuts everything down in reverse order.
func (r *Runner) Run(ctx context.Context) error {
	defer r.store.Close()
	release, err := acquirePidFile(filepath.Join(r.cfg.DataDir, "inkframe.pid"))
	if err != nil {
		return err
	}
	defer release()

	ctx, r.cancel = context.WithCancel(ctx)
	defer r.cancel()

	r.svc.Slideshow = slideshow.New(ctx, r.cfg.RefreshCron,
		func() {
			if _, err := r.svc.Next(context.Background()); err != nil {
				r.log.Warning("slideshow advance failed: %v", err)
			}
		},
		func() {
			if err := r.svc.Redisplay(context.Background()); err != nil {
				r.log.Warning("scheduled refresh failed: %v", err)
			}
		},
		r.log)

	errCh := make(chan error, 3)
	go func() { errCh <- r.web.Start() }()
	go func() { errCh <- r.rpc.Start() }()
	if r.ftp != nil {
		go func() { errCh <- r.ftp.ListenAndServe() }()
	}

	if r.cfg.GPIOPath != "" {
		poller := buttons.NewPoller(afero.NewOsFs(), r.cfg.GPIOPath, buttons.Handlers{
			Info:  func() { _ = r.svc.ShowInfo(context.Background()) },
			Prev:  func() { _, _ = r.svc.Prev(context.Background()) },
			Next:  func() { _, _ = r.svc.Next(context.Background()) },
			Setup: func() { r.svc.EnterSetupMode(context.Background()) },
			Reboot: func() {
				r.log.Warning("reboot requested via buttons")
				_ = exec.Command("reboot").Start()
			},
		}, r.log)
		go poller.Run(ctx)
	}

	st := r.svc.Settings.Load()
	if st.Slideshow.Enabled && st.Slideshow.AutoStart {
		if err := r.svc.StartSlideshow(ctx); err != nil {
			r.log.Warning("slideshow auto-start: %v", err)
		}
	}
	r.log.Info("inkframe %s ready", r.cfg.Version)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		if runErr != nil {
			r.log.Error("daemon surface failed: %v", runErr)
		}
	}

	r.shutdown()
	return runErr
}

// Stop asks a running daemon to exit. Safe to call from any goroutine.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runner) shutdown() {
	r.svc.StopSlideshow()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if r.ftp != nil {
		if err := r.ftp.Stop(); err != nil {
			r.log.Warning("ftp shutdown: %v", err)
		}
	}
	r.rpc.Shutdown()
	if err := r.web.Shutdown(shutdownCtx); err != nil {
		r.log.Warning("web shutdown: %v", err)
	}
	r.log.Info("daemon stopped")
}
