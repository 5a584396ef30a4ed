// Package ftpbridge exposes the photo library over FTP so photos can be
// dropped onto the frame from any file manager. Completed uploads are
// registered in the photo store; everything else is a plain filesystem
// view of the photo directory.
package ftpbridge

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ftpserver "github.com/fclairamb/ftpserverlib"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkframe/inkframe/internal/store"
	"github.com/inkframe/inkframe/pkg/logger"
)

// Config holds the FTP bridge settings.
type Config struct {
	Addr     string
	PhotoDir string
	// User is the accepted login name. Password is checked against the
	// web admin hash; with no hash configured any password passes.
	User         string
	PasswordHash func() string
}

// Bridge is the FTP server bound to the photo directory.
type Bridge struct {
	cfg    Config
	store  *store.Store
	log    logger.Logger
	fs     afero.Fs
	server *ftpserver.FtpServer
}

// New creates the bridge. The photo directory is created if missing.
func New(cfg Config, st *store.Store, log logger.Logger) (*Bridge, error) {
	if cfg.User == "" {
		cfg.User = "frame"
	}
	if err := os.MkdirAll(cfg.PhotoDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	b := &Bridge{
		cfg:   cfg,
		store: st,
		log:   log,
	}
	b.fs = &notifyFs{
		Fs:       afero.NewBasePathFs(afero.NewOsFs(), cfg.PhotoDir),
		onUpload: b.register,
	}
	b.server = ftpserver.NewFtpServer(b)
	return b, nil
}

// GetSettings implements ftpserver.MainDriver.
func (b *Bridge) GetSettings() (*ftpserver.Settings, error) {
	return &ftpserver.Settings{
		ListenAddr:  b.cfg.Addr,
		IdleTimeout: 300,
	}, nil
}

// ClientConnected implements ftpserver.MainDriver.
func (b *Bridge) ClientConnected(cc ftpserver.ClientContext) (string, error) {
	b.log.Info("ftp client connected from %s", cc.RemoteAddr())
	return "inkframe photo drop", nil
}

// ClientDisconnected implements ftpserver.MainDriver.
func (b *Bridge) ClientDisconnected(cc ftpserver.ClientContext) {
	b.log.Info("ftp client %s disconnected", cc.RemoteAddr())
}

// AuthUser implements ftpserver.MainDriver. The login shares the web
// admin credential; an unset hash leaves the bridge open.
func (b *Bridge) AuthUser(_ ftpserver.ClientContext, user, pass string) (ftpserver.ClientDriver, error) {
	if user != b.cfg.User {
		return nil, errors.New("invalid credentials")
	}
	if hash := b.cfg.PasswordHash(); hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)); err != nil {
			return nil, errors.New("invalid credentials")
		}
	}
	return b.fs, nil
}

// GetTLSConfig implements ftpserver.MainDriver. Plain FTP only; the
// bridge lives on the home network.
func (b *Bridge) GetTLSConfig() (*tls.Config, error) {
	return nil, nil
}

// ListenAndServe blocks serving FTP sessions until Stop.
func (b *Bridge) ListenAndServe() error {
	b.log.Info("ftp bridge listening on %s", b.cfg.Addr)
	return b.server.ListenAndServe()
}

// Stop shuts the server down.
func (b *Bridge) Stop() error {
	return b.server.Stop()
}

// register records a completed upload in the photo store. Re-uploads of a
// known path are ignored.
func (b *Bridge) register(name string) {
	path := filepath.Join(b.cfg.PhotoDir, filepath.Clean("/"+name))
	known, err := b.store.Exists(path)
	if err != nil {
		b.log.Error("ftp upload %s: %v", name, err)
		return
	}
	if known {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		b.log.Error("ftp upload %s vanished: %v", name, err)
		return
	}
	id, err := b.store.Add(store.Photo{
		Filename:      filepath.Base(path),
		OriginalPath:  path,
		DisplayPath:   path,
		ThumbnailPath: path,
		FileSize:      info.Size(),
		UploadedAt:    time.Now().Format(time.RFC3339),
	})
	if err != nil {
		b.log.Error("failed to register ftp upload %s: %v", name, err)
		return
	}
	b.log.Info("ftp upload %s registered as photo %d", name, id)
}

// notifyFs wraps the photo directory so files written through it report
// back when they are closed, which is when an FTP STOR completes.
type notifyFs struct {
	afero.Fs
	onUpload func(name string)
}

func (n *notifyFs) Create(name string) (afero.File, error) {
	f, err := n.Fs.Create(name)
	if err != nil {
		return nil, err
	}
	return &notifyFile{File: f, name: name, notify: n.onUpload}, nil
}

func (n *notifyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := n.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return f, nil
	}
	return &notifyFile{File: f, name: name, notify: n.onUpload}, nil
}

type notifyFile struct {
	afero.File
	name   string
	notify func(string)
}

func (f *notifyFile) Close() error {
	err := f.File.Close()
	if err == nil && f.notify != nil {
		f.notify(f.name)
	}
	return err
}
