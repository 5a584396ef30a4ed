// Package framecli is the client side of the daemon's control socket. It
// wraps a JSON-RPC 2.0 session over the unix socket with typed methods so
// the CLI never touches wire details.
package framecli

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
)

// DefaultSocketPath is where the daemon listens unless overridden.
func DefaultSocketPath() string {
	if v := os.Getenv("INKFRAME_SOCKET"); v != "" {
		return v
	}
	return filepath.Join(os.TempDir(), "inkframe.sock")
}

// Client is a connected control-socket session.
type Client struct {
	conn net.Conn
	cli  *jrpc2.Client
}

// Dial connects to the daemon's control socket.
func Dial(path string) (*Client, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon (is it running?): %w", err)
	}
	return &Client{
		conn: conn,
		cli:  jrpc2.NewClient(channel.Line(conn, conn), nil),
	}, nil
}

// Close ends the session.
func (c *Client) Close() error {
	c.cli.Close()
	return c.conn.Close()
}

// VersionInfo reports the daemon's build identity.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

// Version asks the daemon for its build info.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var res VersionInfo
	if err := c.cli.CallResult(ctx, "system.getVersion", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Stop asks the daemon to shut down.
func (c *Client) Stop(ctx context.Context) error {
	return c.cli.CallResult(ctx, "system.stop", nil, nil)
}

// Next advances the display and returns the shown photo path.
func (c *Client) Next(ctx context.Context) (string, error) {
	return c.current(ctx, "frame.next", nil)
}

// Prev steps the display back and returns the shown photo path.
func (c *Client) Prev(ctx context.Context) (string, error) {
	return c.current(ctx, "frame.prev", nil)
}

// Show displays a specific photo by its library id.
func (c *Client) Show(ctx context.Context, id int64) (string, error) {
	return c.current(ctx, "frame.show", map[string]int64{"id": id})
}

func (c *Client) current(ctx context.Context, method string, params interface{}) (string, error) {
	var res struct {
		Current string `json:"current"`
	}
	if err := c.cli.CallResult(ctx, method, params, &res); err != nil {
		return "", err
	}
	return res.Current, nil
}

// ShowInfo puts the system info screen on the display.
func (c *Client) ShowInfo(ctx context.Context) error {
	return c.cli.CallResult(ctx, "frame.info", nil, nil)
}

// Status returns the daemon's aggregate status as raw JSON-decoded data,
// leaving presentation to the caller.
func (c *Client) Status(ctx context.Context) (map[string]interface{}, error) {
	var res map[string]interface{}
	if err := c.cli.CallResult(ctx, "frame.status", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// StartSlideshow starts automatic cycling at the configured interval.
func (c *Client) StartSlideshow(ctx context.Context) error {
	return c.cli.CallResult(ctx, "slideshow.start", nil, nil)
}

// StopSlideshow stops automatic cycling.
func (c *Client) StopSlideshow(ctx context.Context) error {
	return c.cli.CallResult(ctx, "slideshow.stop", nil, nil)
}
