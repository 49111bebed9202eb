// Package logger provides the levelled logger shared by the sync loop,
// sources and commands.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/mitchellh/go-homedir"
)

// Logger is the logging interface used across agenda.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	// Close releases the underlying writer, if any. Safe to call twice.
	Close() error
}

// StandardLogger wraps a stdlib *log.Logger.
type StandardLogger struct {
	logger *log.Logger
	closer io.Closer
	once   sync.Once
}

// NewStandardLogger wraps l.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// NewFileLogger appends to the file at path, creating it if needed. The TUI
// owns the terminal, so its logs go here instead of stderr.
func NewFileLogger(path string) (*StandardLogger, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand log path: %w", err)
	}
	f, err := os.OpenFile(expanded, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &StandardLogger{
		logger: log.New(f, "agenda ", log.LstdFlags),
		closer: f,
	}, nil
}

// Info logs with an [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs with a [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs with an [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Close closes the log file when the logger owns one.
func (s *StandardLogger) Close() error {
	var err error
	s.once.Do(func() {
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}

// NopLogger discards everything.
type NopLogger struct{}

// NewNopLogger returns a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warning(format string, args ...interface{}) {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Close() error                               { return nil }

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
	_ Logger = (*MockLogger)(nil)
)

// MockLogger records calls for assertions in tests.
type MockLogger struct {
	mu           sync.Mutex
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Close() error { return nil }

// Counts returns the number of info, warning and error calls so far.
func (m *MockLogger) Counts() (info, warning, errs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.InfoCalls), len(m.WarningCalls), len(m.ErrorCalls)
}
