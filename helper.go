package logging

import (
	"strings"

	"github.com/Station-Manager/apibooster/errorrecord"
	"github.com/rs/zerolog"
)

// parseLevel parses a string log level into a zerolog.Level.
// Returns zerolog.NoLevel and an error if parsing fails.
func parseLevel(level string) (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}

// errorChain is the cause chain of an error flattened into log fields. It is
// read from the same ErrorRecord that Record attaches, so both describe an
// error identically.
type errorChain struct {
	messages []string // outermost first
	ops      []string // "" where the link carries no operation
}

func newErrorChain(err error) errorChain {
	var c errorChain
	for rec := errorrecord.BuildError(err); rec != nil; rec = rec.InnerError {
		c.messages = append(c.messages, rec.Message)
		c.ops = append(c.ops, recordOp(rec))
	}
	return c
}

// recordOp rebuilds the operation identifier from a record's target site.
func recordOp(rec *errorrecord.ErrorRecord) string {
	var parts []string
	for _, p := range []*string{rec.ModuleName, rec.DeclaringTypeName, rec.TargetSiteName} {
		if p != nil && *p != emptyString {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, ".")
}

// emit writes <key>_chain, <key>_root, <key>_history and <key>_ops, plus
// <key>_root_op when the innermost link has an operation.
func (c errorChain) emit(e *zerolog.Event, key string) {
	n := len(c.messages)
	if n == 0 {
		return
	}
	e.Strs(key+"_chain", c.messages).
		Str(key+"_root", c.messages[n-1]).
		Str(key+"_history", strings.Join(c.messages, " -> ")).
		Strs(key+"_ops", c.ops)
	if op := c.ops[n-1]; op != emptyString {
		e.Str(key+"_root_op", op)
	}
}

// eventAt returns the zerolog event for level, or nil for levels without one.
func eventAt(logger *zerolog.Logger, level zerolog.Level) *zerolog.Event {
	switch level {
	case zerolog.TraceLevel:
		return logger.Trace()
	case zerolog.DebugLevel:
		return logger.Debug()
	case zerolog.InfoLevel:
		return logger.Info()
	case zerolog.WarnLevel:
		return logger.Warn()
	case zerolog.ErrorLevel:
		return logger.Error()
	case zerolog.FatalLevel:
		return logger.Fatal()
	case zerolog.PanicLevel:
		return logger.Panic()
	default:
		return nil
	}
}

// logEventBuilder creates a log event for the given level on the service's
// root logger. If the level is disabled on the logger, it returns a no-op
// LogEvent.
func logEventBuilder(s *Service, level zerolog.Level) LogEvent {
	if s == nil || !s.isInitialized.Load() {
		return newLogEvent(nil)
	}
	return trackedEvent(s, s.logger.Load(), level)
}

// trackedEvent creates an event on logger and registers it as in-flight on s
// so Close() can wait for it. The registration happens under the read lock so
// it never races with Close() flipping isInitialized.
func trackedEvent(s *Service, logger *zerolog.Logger, level zerolog.Level) LogEvent {
	if s == nil || logger == nil || level == zerolog.NoLevel {
		return newLogEvent(nil)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isInitialized.Load() {
		return newLogEvent(nil)
	}
	if logger.GetLevel() > level {
		return newLogEvent(nil) // Return early if level is not enabled
	}

	event := eventAt(logger, level)
	if event == nil {
		return newLogEvent(nil)
	}

	s.activeOps.Add(1)
	s.wg.Add(1)

	return newTrackedLogEvent(event, s)
}
