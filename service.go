package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Service is the process-wide logger. Set WorkingDir and Config (or use
// NewService), call Initialize once and Close on shutdown.
type Service struct {
	WorkingDir string
	Config     *Config

	// Routes are appended to the routes built from Config. They let callers
	// plug extra sinks into the pipeline.
	Routes []Route
	// ConsoleOut overrides os.Stderr for the console writer.
	ConsoleOut io.Writer

	logger        atomic.Pointer[zerolog.Logger]
	isInitialized atomic.Bool
	activeOps     atomic.Int64

	initOnce sync.Once
	initErr  error

	mu         sync.RWMutex
	wg         sync.WaitGroup
	fileWriter *lumberjack.Logger
	router     *router
}

// NewService returns a Service for cfg rooted at workingDir.
func NewService(workingDir string, cfg *Config) *Service {
	return &Service{WorkingDir: workingDir, Config: cfg}
}

// Initialize validates the configuration and builds the writer pipeline.
// Calling it again returns the result of the first call.
func (s *Service) Initialize() error {
	const op errors.Op = "logging.Service.Initialize"
	if s == nil {
		return errors.New(op).Msg(errMsgNilService)
	}

	s.initOnce.Do(func() {
		s.initErr = s.initialize()
	})
	return s.initErr
}

func (s *Service) initialize() error {
	const op errors.Op = "logging.Service.initialize"

	if s.Config == nil {
		return errors.New(op).Msg(errMsgAppCfgNotSet)
	}
	if err := validateConfig(s.Config); err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	level, err := parseLevel(s.Config.Level)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgLevel)
	}

	appName, appVersion := appIdentity(s.Config)

	if s.Config.FileLogging {
		if s.WorkingDir == emptyString {
			return errors.New(op).Msg(errMsgWorkingDir)
		}
		dir := filepath.Join(s.WorkingDir, s.Config.RelLogFileDir)
		if err = os.MkdirAll(dir, os.ModePerm); err != nil {
			return errors.New(op).Err(err).Msg(errMsgLogDir)
		}
	}

	writers := s.initializeWriters(appName)

	routes, err := s.buildRoutes(context.Background())
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgSinkInit)
	}
	if len(routes) > 0 {
		sinkLevel := zerolog.InfoLevel
		if s.Config.SinkLevel != emptyString {
			if sinkLevel, err = parseLevel(s.Config.SinkLevel); err != nil {
				return errors.New(op).Err(err).Msg(errMsgLevel)
			}
		}
		s.router = newRouter(routes, sinkLevel, s.Config.SinkQueueSize,
			time.Duration(s.Config.SinkWriteTimeoutMS)*time.Millisecond)
		writers = append(writers, s.router)
	}

	if len(writers) == 0 {
		return errors.New(op).Msg(errMsgNoChannels)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With()
	if s.Config.WithTimestamp {
		ctx = ctx.Timestamp()
	}
	if host, hostErr := os.Hostname(); hostErr == nil {
		ctx = ctx.Str(FieldMachineName, host)
	}
	ctx = ctx.Str(FieldAssembly, appName).Str(FieldVersion, appVersion)
	if s.Config.SkipFrameCount > 0 {
		ctx = ctx.CallerWithSkipFrameCount(s.Config.SkipFrameCount)
	}
	logger := ctx.Logger()

	s.logger.Store(&logger)
	s.isInitialized.Store(true)
	return nil
}

// Close stops accepting new events, waits up to ShutdownTimeoutMS for
// in-flight events, drains the sinks and closes the log file.
// It's safe to call Close multiple times.
func (s *Service) Close() error {
	if s == nil || !s.isInitialized.Load() {
		return nil
	}

	s.mu.Lock()
	if !s.isInitialized.Load() {
		s.mu.Unlock()
		return nil
	}
	s.isInitialized.Store(false)
	s.mu.Unlock()

	timeout := time.Duration(s.Config.ShutdownTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultShutdownTimeoutMS * time.Millisecond
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	logger := s.logger.Load()
	select {
	case <-done:
	case <-time.After(timeout):
		if s.Config.ShutdownTimeoutWarning && logger != nil {
			logger.Warn().
				Int64("active_operations", s.activeOps.Load()).
				Dur("timeout", timeout).
				Msg("Logger shutdown timeout exceeded")
		}
	}

	var firstErr error
	if s.router != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		firstErr = s.router.Close(ctx)
		cancel()
	}
	if s.fileWriter != nil {
		if err := s.fileWriter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.logger.Store(nil)
	return firstErr
}

// ActiveOperations returns the number of events built but not yet written.
func (s *Service) ActiveOperations() int64 {
	if s == nil {
		return 0
	}
	return s.activeOps.Load()
}

// Hook installs zerolog hooks on the root logger.
func (s *Service) Hook(hooks ...zerolog.Hook) {
	if !s.isInitialized.Load() {
		return
	}

	// Atomic compare-and-swap loop for thread-safe hook installation
	for {
		oldLogger := s.logger.Load()
		if oldLogger == nil {
			return
		}

		newLogger := oldLogger.Hook(hooks...)

		// Try to swap - if another goroutine changed it, retry
		if s.logger.CompareAndSwap(oldLogger, &newLogger) {
			break
		}
	}
}

// Structured logging methods

// TraceWith returns a LogEvent for structured Trace-level logging.
func (s *Service) TraceWith() LogEvent {
	return logEventBuilder(s, zerolog.TraceLevel)
}

// DebugWith returns a LogEvent for structured Debug-level logging.
func (s *Service) DebugWith() LogEvent {
	return logEventBuilder(s, zerolog.DebugLevel)
}

// InfoWith returns a LogEvent for structured Info-level logging.
// Example: logger.InfoWith().Str("user_id", id).Int("count", 5).Msg("User processed")
func (s *Service) InfoWith() LogEvent {
	return logEventBuilder(s, zerolog.InfoLevel)
}

// WarnWith returns a LogEvent for structured Warn-level logging.
func (s *Service) WarnWith() LogEvent {
	return logEventBuilder(s, zerolog.WarnLevel)
}

// ErrorWith returns a LogEvent for structured Error-level logging.
// Example: logger.ErrorWith().Err(err).Str("operation", "database").Msg("Query failed")
func (s *Service) ErrorWith() LogEvent {
	return logEventBuilder(s, zerolog.ErrorLevel)
}

// FatalWith returns a LogEvent for structured Fatal-level logging.
// The program will exit after the log is written.
func (s *Service) FatalWith() LogEvent {
	return logEventBuilder(s, zerolog.FatalLevel)
}

// PanicWith returns a LogEvent for structured Panic-level logging.
// Msg panics after the log is written.
func (s *Service) PanicWith() LogEvent {
	return logEventBuilder(s, zerolog.PanicLevel)
}

// WithLevel returns a LogEvent for a level chosen at runtime.
func (s *Service) WithLevel(level zerolog.Level) LogEvent {
	return logEventBuilder(s, level)
}

// With returns a LogContext for creating a child logger with pre-populated fields.
// Example: reqLogger := logger.With().Str("request_id", id).Logger()
func (s *Service) With() LogContext {
	if s == nil || !s.isInitialized.Load() {
		return &noopLogContext{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	logger := s.logger.Load()
	if !s.isInitialized.Load() || logger == nil {
		return &noopLogContext{}
	}
	return &logContext{
		context: logger.With(),
		service: s,
	}
}
