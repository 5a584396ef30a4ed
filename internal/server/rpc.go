package server

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	"github.com/inkframe/inkframe/internal/frame"
	"github.com/inkframe/inkframe/internal/store"
	"github.com/inkframe/inkframe/pkg/framelib"
	"github.com/inkframe/inkframe/pkg/logger"
)

// Custom JSON-RPC error codes for frame operations.
const (
	CodeEmptyLibrary  = jrpc2.Code(-32001)
	CodePhotoNotFound = jrpc2.Code(-32002)
	CodeInvalidParams = jrpc2.Code(-32602)
)

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

// ShowParams is the input for frame.show.
type ShowParams struct {
	ID int64 `json:"id"`
}

// CurrentResult is the response for the display movement methods.
type CurrentResult struct {
	Current string `json:"current"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// RPCServer serves the CLI control socket: a unix domain socket speaking
// JSON-RPC 2.0, one line-delimited session per connection.
type RPCServer struct {
	path    string
	version string
	commit  string
	svc     *frame.Service
	log     logger.Logger

	// onStop is invoked by system.stop to shut the daemon down.
	onStop func()

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// NewRPCServer creates the control socket server. onStop is called when a
// client asks the daemon to exit.
func NewRPCServer(path, version, commit string, svc *frame.Service, onStop func(), log logger.Logger) *RPCServer {
	return &RPCServer{
		path:    path,
		version: version,
		commit:  commit,
		svc:     svc,
		onStop:  onStop,
		log:     log,
	}
}

func (rs *RPCServer) methods() handler.Map {
	return handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"system.stop":       handler.New(rs.systemStop),
		"frame.next":        handler.New(rs.frameNext),
		"frame.prev":        handler.New(rs.framePrev),
		"frame.show":        handler.New(rs.frameShow),
		"frame.info":        handler.New(rs.frameInfo),
		"frame.status":      handler.New(rs.frameStatus),
		"slideshow.start":   handler.New(rs.slideshowStart),
		"slideshow.stop":    handler.New(rs.slideshowStop),
	}
}

// Start listens on the unix socket and serves connections until Shutdown.
// A stale socket file from a previous crash is removed first.
func (rs *RPCServer) Start() error {
	if err := os.Remove(rs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	ln, err := net.Listen("unix", rs.path)
	if err != nil {
		return err
	}
	// Owner-only: the socket grants full control of the frame.
	if err := os.Chmod(rs.path, 0o600); err != nil {
		ln.Close()
		return err
	}
	rs.mu.Lock()
	rs.ln = ln
	rs.mu.Unlock()

	rs.log.Info("control socket listening on %s", rs.path)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		rs.wg.Add(1)
		go func() {
			defer rs.wg.Done()
			srv := jrpc2.NewServer(rs.methods(), nil)
			srv.Start(channel.Line(conn, conn))
			if err := srv.Wait(); err != nil {
				rs.log.Warning("control session ended: %v", err)
			}
			conn.Close()
		}()
	}
}

// Shutdown closes the listener, waits for in-flight sessions and removes
// the socket file.
func (rs *RPCServer) Shutdown() {
	rs.mu.Lock()
	ln := rs.ln
	rs.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
	rs.wg.Wait()
	os.Remove(rs.path)
}

func rpcError(err error) error {
	switch {
	case errors.Is(err, framelib.ErrEmptyLibrary):
		return &jrpc2.Error{Code: CodeEmptyLibrary, Message: "no photos available"}
	case errors.Is(err, framelib.ErrNotFound), errors.Is(err, store.ErrPhotoNotFound):
		return &jrpc2.Error{Code: CodePhotoNotFound, Message: "photo not found"}
	default:
		return err
	}
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{Version: rs.version, Commit: rs.commit}, nil
}

func (rs *RPCServer) systemStop(_ context.Context) (*EmptyResult, error) {
	if rs.onStop != nil {
		go rs.onStop()
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) frameNext(ctx context.Context) (*CurrentResult, error) {
	id, err := rs.svc.Next(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return &CurrentResult{Current: id}, nil
}

func (rs *RPCServer) framePrev(ctx context.Context) (*CurrentResult, error) {
	id, err := rs.svc.Prev(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return &CurrentResult{Current: id}, nil
}

func (rs *RPCServer) frameShow(ctx context.Context, p *ShowParams) (*CurrentResult, error) {
	if p.ID <= 0 {
		return nil, &jrpc2.Error{Code: CodeInvalidParams, Message: "missing required param: id"}
	}
	id, err := rs.svc.Show(ctx, p.ID)
	if err != nil {
		return nil, rpcError(err)
	}
	return &CurrentResult{Current: id}, nil
}

func (rs *RPCServer) frameInfo(ctx context.Context) (*EmptyResult, error) {
	if err := rs.svc.ShowInfo(ctx); err != nil {
		return nil, rpcError(err)
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) frameStatus(ctx context.Context) (*frame.Status, error) {
	st := rs.svc.SystemStatus(ctx)
	return &st, nil
}

func (rs *RPCServer) slideshowStart(ctx context.Context) (*EmptyResult, error) {
	if err := rs.svc.StartSlideshow(ctx); err != nil {
		return nil, rpcError(err)
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) slideshowStop(_ context.Context) (*EmptyResult, error) {
	rs.svc.StopSlideshow()
	return &EmptyResult{}, nil
}
