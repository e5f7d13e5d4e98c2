package logging

import (
	"context"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Event is one decoded log entry as written by zerolog.
type Event map[string]any

// Has reports whether the event carries the property key.
func (e Event) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Str returns a string property, or "" when absent or not a string.
func (e Event) Str(key string) string {
	s, _ := e[key].(string)
	return s
}

// Int returns a numeric property truncated to int, or 0 when absent.
func (e Event) Int(key string) int {
	switch v := e[key].(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case uint64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// Time returns the event timestamp, or the zero time when the logger does
// not stamp events.
func (e Event) Time() time.Time {
	switch v := e[zerolog.TimestampFieldName].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		if t, err := time.Parse(zerolog.TimeFieldFormat, v); err == nil {
			return t
		}
	case float64:
		return time.Unix(int64(v), 0)
	}
	return time.Time{}
}

// Filter selects the events a route forwards.
type Filter func(Event) bool

// IncludeOnly matches events carrying the property key.
func IncludeOnly(key string) Filter {
	return func(e Event) bool { return e.Has(key) }
}

// Excluding matches events carrying none of the property keys.
func Excluding(keys ...string) Filter {
	return func(e Event) bool {
		for _, k := range keys {
			if e.Has(k) {
				return false
			}
		}
		return true
	}
}

// Sink is a downstream store for routed events. Write is called from a
// single goroutine per route.
type Sink interface {
	Write(ctx context.Context, evt Event) error
	Close() error
}

// Route binds a filter to a sink.
type Route struct {
	Name   string
	Filter Filter
	Sink   Sink
}

// router is the zerolog writer feeding the sinks. Every route owns a bounded
// queue drained by one goroutine; a full queue drops the event.
type router struct {
	minLevel     zerolog.Level
	writeTimeout time.Duration
	routes       []*routeWorker

	// stop cancels in-flight writes and makes the workers discard what is
	// left in their queues.
	base context.Context
	stop context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type routeWorker struct {
	Route
	queue chan Event
}

func newRouter(routes []Route, minLevel zerolog.Level, queueSize int, writeTimeout time.Duration) *router {
	if queueSize <= 0 {
		queueSize = defaultSinkQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultSinkWriteTimeout * time.Millisecond
	}

	base, stop := context.WithCancel(context.Background())
	r := &router{minLevel: minLevel, writeTimeout: writeTimeout, base: base, stop: stop}
	for _, rt := range routes {
		if rt.Sink == nil {
			continue
		}
		if rt.Filter == nil {
			rt.Filter = func(Event) bool { return true }
		}
		w := &routeWorker{Route: rt, queue: make(chan Event, queueSize)}
		r.routes = append(r.routes, w)
		r.wg.Add(1)
		go r.drain(w)
	}
	return r
}

func (r *router) drain(w *routeWorker) {
	defer r.wg.Done()
	for evt := range w.queue {
		if r.base.Err() != nil {
			sinkDropped.WithLabelValues(w.Name).Inc()
			continue
		}
		ctx, cancel := context.WithTimeout(r.base, r.writeTimeout)
		if err := w.Sink.Write(ctx, evt); err != nil {
			sinkFailures.WithLabelValues(w.Name).Inc()
		}
		cancel()
	}
}

// Write implements io.Writer for events without a level.
func (r *router) Write(p []byte) (int, error) {
	return r.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter. Sink problems are never
// reported back to the logger.
func (r *router) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level != zerolog.NoLevel && level < r.minLevel {
		return len(p), nil
	}

	var evt Event
	if err := json.Unmarshal(p, &evt); err != nil {
		sinkFailures.WithLabelValues("decode").Inc()
		return len(p), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return len(p), nil
	}

	for _, w := range r.routes {
		if !w.Filter(evt) {
			continue
		}
		select {
		case w.queue <- evt:
		default:
			sinkDropped.WithLabelValues(w.Name).Inc()
		}
	}

	return len(p), nil
}

// Close stops accepting events and drains the queues until ctx expires. What
// is still queued then is discarded and pending writes are cancelled. The
// sinks are closed once every worker has returned.
func (r *router) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for _, w := range r.routes {
		close(w.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.stop()
		<-done
	}
	r.stop()

	var firstErr error
	for _, w := range r.routes {
		if err := w.Sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
