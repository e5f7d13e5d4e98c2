package logging

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAppName = "apibooster-test"

// validConfig returns a console-only debug configuration without sinks.
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.ConsoleNoColor = true
	cfg.AppName = testAppName
	cfg.AppVersion = "v1.2.3"
	cfg.ShutdownTimeoutMS = 1000
	return cfg
}

// newTestService initializes a service for cfg writing its console output
// to out.
func newTestService(t testing.TB, cfg *Config, out io.Writer) *Service {
	t.Helper()
	svc := &Service{
		WorkingDir: t.TempDir(),
		Config:     cfg,
		ConsoleOut: out,
	}
	require.NoError(t, svc.Initialize())
	return svc
}

// newFileLogger returns a file-only service at level and the path of its
// log file.
func newFileLogger(t testing.TB, level string) (*Service, string) {
	t.Helper()
	cfg := validConfig()
	cfg.Level = level
	cfg.WithTimestamp = false
	cfg.ConsoleLogging = false
	cfg.FileLogging = true
	cfg.RelLogFileDir = "logs"

	svc := newTestService(t, cfg, nil)
	return svc, filepath.Join(svc.WorkingDir, "logs", testAppName+".log")
}

// threadSafeBuffer is a simple thread-safe buffer for capturing log output.
type threadSafeBuffer struct {
	bytes.Buffer
	sync.Mutex
}

func (b *threadSafeBuffer) Write(p []byte) (n int, err error) {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.String()
}

// memorySink keeps every event it receives.
type memorySink struct {
	mu       sync.Mutex
	events   []Event
	closed   bool
	writeErr error
}

func (m *memorySink) Write(_ context.Context, evt Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.events = append(m.events, evt)
	return nil
}

func (m *memorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *memorySink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type discardSink struct{}

func (discardSink) Write(context.Context, Event) error { return nil }
func (discardSink) Close() error                       { return nil }
