package wifi

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/inkframe/inkframe/pkg/logger"
)

// fakeRunner returns canned nmcli output keyed by the joined arguments.
type fakeRunner struct {
	outputs map[string]string
	err     error
	calls   []string
}

func (f *fakeRunner) run(ctx context.Context, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if f.err != nil {
		return "", f.err
	}
	return f.outputs[key], nil
}

// TestCurrentSSID verifies active-connection parsing.
func TestCurrentSSID(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{
		"-t -f active,ssid dev wifi": "no:neighbale\nyes:homenet\nno:cafe\n",
	}}
	m := NewManagerWithRunner(f.run, logger.NewNopLogger())

	if got := m.CurrentSSID(context.Background()); got != "homenet" {
		t.Errorf("CurrentSSID = %q, want homenet", got)
	}
	if !m.Connected(context.Background()) {
		t.Error("Connected should be true with an active SSID")
	}
}

// TestCurrentSSIDErrorsAreAbsorbed verifies an nmcli failure reads as
// "not connected", never as a hang or a panic.
func TestCurrentSSIDErrorsAreAbsorbed(t *testing.T) {
	f := &fakeRunner{err: errors.New("radio off")}
	log := logger.NewMockLogger()
	m := NewManagerWithRunner(f.run, log)

	if got := m.CurrentSSID(context.Background()); got != "" {
		t.Errorf("CurrentSSID on error = %q, want empty", got)
	}
	if len(log.WarningCalls) == 0 {
		t.Error("nmcli failure should be logged")
	}
}

// TestAPMode verifies hotspot detection by connection name.
func TestAPMode(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{
		"-t -f NAME con show --active": "homenet\n" + APName + "\n",
	}}
	m := NewManagerWithRunner(f.run, logger.NewNopLogger())
	if !m.APMode(context.Background()) {
		t.Error("APMode should detect the hotspot connection")
	}
}

// TestScanDeduplicates verifies scan output parsing drops blanks and
// duplicate SSIDs.
func TestScanDeduplicates(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{
		"-t -f ssid,signal dev wifi list --rescan yes": "homenet:90\n:70\nhomenet:65\ncafe:40\n",
	}}
	m := NewManagerWithRunner(f.run, logger.NewNopLogger())

	ssids, err := m.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(ssids) != 2 || ssids[0] != "homenet" || ssids[1] != "cafe" {
		t.Errorf("Scan = %v, want [homenet cafe]", ssids)
	}
}

// TestConnectStopsHotspotFirst verifies joining a network tears down an
// active hotspot before connecting.
func TestConnectStopsHotspotFirst(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{
		"-t -f NAME con show --active": APName + "\n",
	}}
	m := NewManagerWithRunner(f.run, logger.NewNopLogger())

	if err := m.Connect(context.Background(), "homenet", "hunter2"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	var sawDown, sawConnect bool
	for _, call := range f.calls {
		if call == "con down "+APName {
			sawDown = true
		}
		if strings.HasPrefix(call, "dev wifi connect homenet password") {
			if !sawDown {
				t.Fatal("connect ran before the hotspot was stopped")
			}
			sawConnect = true
		}
	}
	if !sawDown || !sawConnect {
		t.Errorf("expected hotspot teardown then connect, calls: %v", f.calls)
	}
}
