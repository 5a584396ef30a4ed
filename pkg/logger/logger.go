// Package logger provides the logging interface shared by all InkFrame
// components. Backends cover console output, an on-device log file, and
// a recording mock for tests.
package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger is the interface every InkFrame component logs through.
type Logger interface {
	// Info logs an informational message (e.g. "slideshow started").
	Info(format string, args ...interface{})

	// Warning logs a recoverable problem (e.g. "failed to save position").
	Warning(format string, args ...interface{})

	// Error logs a failure (e.g. "failed to open photo database").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger (e.g. the log file).
	// Safe to call multiple times. Returns nil for loggers without
	// resources.
	Close() error
}

// StandardLogger wraps a stdlib *log.Logger for console output.
type StandardLogger struct {
	logger *log.Logger
}

// NewStandardLogger creates a logger around the given *log.Logger.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// Info logs an informational message with an [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with a [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with an [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Close is a no-op for StandardLogger.
func (s *StandardLogger) Close() error {
	return nil
}

// FileLogger appends to a log file on the device, used when the daemon
// runs detached from a terminal.
type FileLogger struct {
	f      *os.File
	logger *log.Logger
}

// NewFileLogger opens (or creates) path for appending and returns a
// logger writing to it.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &FileLogger{
		f:      f,
		logger: log.New(f, "", log.LstdFlags),
	}, nil
}

// Info logs an informational message with an [INFO] prefix.
func (l *FileLogger) Info(format string, args ...interface{}) {
	l.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with a [WARNING] prefix.
func (l *FileLogger) Warning(format string, args ...interface{}) {
	l.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with an [ERROR] prefix.
func (l *FileLogger) Error(format string, args ...interface{}) {
	l.logger.Printf("[ERROR] "+format, args...)
}

// Close closes the underlying log file. Safe to call multiple times.
func (l *FileLogger) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// NopLogger discards all messages. Useful in tests and benchmarks.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Info discards the message.
func (n *NopLogger) Info(format string, args ...interface{}) {}

// Warning discards the message.
func (n *NopLogger) Warning(format string, args ...interface{}) {}

// Error discards the message.
func (n *NopLogger) Error(format string, args ...interface{}) {}

// Close is a no-op.
func (n *NopLogger) Close() error {
	return nil
}

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger records every call for verification in tests.
type MockLogger struct {
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.CloseCalled = true
	return nil
}

var _ Logger = (*MockLogger)(nil)
