package middleware

import (
	"context"
	"sync"
	"testing"

	logging "github.com/Station-Manager/apibooster"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []logging.Event
}

func (c *captureSink) Write(_ context.Context, evt logging.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) Events() []logging.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]logging.Event(nil), c.events...)
}

// newCapturingService returns an initialized service whose info and higher
// events land in the returned sink once the service is closed.
func newCapturingService(t *testing.T) (*logging.Service, *captureSink) {
	t.Helper()

	cfg := logging.DefaultConfig()
	cfg.Level = "debug"
	cfg.ConsoleLogging = false

	sink := &captureSink{}
	svc := logging.NewService(t.TempDir(), cfg)
	svc.Routes = []logging.Route{{Name: "capture", Sink: sink}}
	require.NoError(t, svc.Initialize())
	t.Cleanup(func() { _ = svc.Close() })

	return svc, sink
}

// flush closes svc so the router delivers every queued event.
func flush(t *testing.T, svc *logging.Service, sink *captureSink) []logging.Event {
	t.Helper()
	require.NoError(t, svc.Close())
	return sink.Events()
}
