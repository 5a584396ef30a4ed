// Package wifi wraps NetworkManager (nmcli) for the frame's network
// provisioning: reading connection status, joining a network, and running
// the "InkFrame-Setup" hotspot used by setup mode. Every external command
// is bounded by a timeout so an unresponsive radio degrades to an error
// instead of hanging a caller.
package wifi

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	"github.com/inkframe/inkframe/pkg/logger"
)

// APName is the hotspot connection name used in setup mode.
const APName = "InkFrame-Setup"

const commandTimeout = 15 * time.Second

// Manager shells out to nmcli. The run function is injectable for tests.
type Manager struct {
	run func(ctx context.Context, args ...string) (string, error)
	log logger.Logger
}

// NewManager creates a manager using the system nmcli.
func NewManager(log logger.Logger) *Manager {
	return &Manager{run: runNmcli, log: log}
}

// NewManagerWithRunner creates a manager with a custom command runner,
// used by tests.
func NewManagerWithRunner(run func(ctx context.Context, args ...string) (string, error), log logger.Logger) *Manager {
	return &Manager{run: run, log: log}
}

func runNmcli(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "nmcli", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("nmcli %s: %w (output: %s)", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// CurrentSSID returns the SSID of the active wifi connection, or "" when
// not connected.
func (m *Manager) CurrentSSID(ctx context.Context) string {
	out, err := m.run(ctx, "-t", "-f", "active,ssid", "dev", "wifi")
	if err != nil {
		m.log.Warning("failed to query wifi status: %v", err)
		return ""
	}
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "yes:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// Connected reports whether the frame has an active wifi connection.
func (m *Manager) Connected(ctx context.Context) bool {
	return m.CurrentSSID(ctx) != ""
}

// APMode reports whether the setup hotspot is active.
func (m *Manager) APMode(ctx context.Context) bool {
	out, err := m.run(ctx, "-t", "-f", "NAME", "con", "show", "--active")
	if err != nil {
		m.log.Warning("failed to query active connections: %v", err)
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == APName {
			return true
		}
	}
	return false
}

// Scan returns the SSIDs currently visible, strongest first, without
// duplicates.
func (m *Manager) Scan(ctx context.Context) ([]string, error) {
	out, err := m.run(ctx, "-t", "-f", "ssid,signal", "dev", "wifi", "list", "--rescan", "yes")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ssids []string
	for _, line := range strings.Split(out, "\n") {
		ssid, _, _ := strings.Cut(line, ":")
		ssid = strings.TrimSpace(ssid)
		if ssid == "" || seen[ssid] {
			continue
		}
		seen[ssid] = true
		ssids = append(ssids, ssid)
	}
	return ssids, nil
}

// Connect joins the given network. The hotspot is torn down first if it
// is running, since the radio cannot do both at once.
func (m *Manager) Connect(ctx context.Context, ssid, password string) error {
	if m.APMode(ctx) {
		if err := m.StopAP(ctx); err != nil {
			m.log.Warning("failed to stop hotspot before connecting: %v", err)
		}
	}
	args := []string{"dev", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	if _, err := m.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to connect to %q: %w", ssid, err)
	}
	m.log.Info("connected to wifi network %q", ssid)
	return nil
}

// StartAP brings up the setup hotspot.
func (m *Manager) StartAP(ctx context.Context) error {
	_, err := m.run(ctx, "dev", "wifi", "hotspot", "con-name", APName, "ssid", APName)
	if err != nil {
		return fmt.Errorf("failed to start setup hotspot: %w", err)
	}
	m.log.Info("setup hotspot %q started", APName)
	return nil
}

// StopAP tears down the setup hotspot.
func (m *Manager) StopAP(ctx context.Context) error {
	if _, err := m.run(ctx, "con", "down", APName); err != nil {
		return fmt.Errorf("failed to stop setup hotspot: %w", err)
	}
	return nil
}

// IPAddress returns the first non-loopback IPv4 address, or "" when the
// device has none.
func IPAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}
