package logger

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestStandardLoggerPrefixes verifies each level gets its own prefix.
func TestStandardLoggerPrefixes(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(log.New(&buf, "", 0))

	l.Info("hello %s", "frame")
	l.Warning("low %s", "battery")
	l.Error("display %s", "stuck")

	out := buf.String()
	for _, want := range []string{
		"[INFO] hello frame",
		"[WARNING] low battery",
		"[ERROR] display stuck",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q, got:\n%s", want, out)
		}
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

// TestFileLoggerWritesAndCloses verifies messages land in the file and
// Close is safe to call twice.
func TestFileLoggerWritesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkframe.log")
	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	l.Info("started")
	l.Warning("slow storage")

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] started") {
		t.Errorf("log file missing info line, got:\n%s", data)
	}
	if !strings.Contains(string(data), "[WARNING] slow storage") {
		t.Errorf("log file missing warning line, got:\n%s", data)
	}
}

// TestMultiLoggerBroadcasts verifies every backend receives each message.
func TestMultiLoggerBroadcasts(t *testing.T) {
	a := NewMockLogger()
	b := NewMockLogger()
	m := NewMultiLogger(a, b)

	m.Info("one")
	m.Error("two")

	for _, mock := range []*MockLogger{a, b} {
		if len(mock.InfoCalls) != 1 || mock.InfoCalls[0] != "one" {
			t.Errorf("backend info calls = %v, want [one]", mock.InfoCalls)
		}
		if len(mock.ErrorCalls) != 1 || mock.ErrorCalls[0] != "two" {
			t.Errorf("backend error calls = %v, want [two]", mock.ErrorCalls)
		}
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if !a.CloseCalled || !b.CloseCalled {
		t.Error("Close was not propagated to all backends")
	}
}

// TestNopLoggerDiscards just exercises the no-op paths.
func TestNopLoggerDiscards(t *testing.T) {
	n := NewNopLogger()
	n.Info("ignored")
	n.Warning("ignored")
	n.Error("ignored")
	if err := n.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
