package logging

import "github.com/rs/zerolog"

// Logger is the structured logging surface handed to application code and
// middleware. Events are built with the typed field methods of LogEvent and
// written by Msg, Msgf or Send.
type Logger interface {
	TraceWith() LogEvent
	DebugWith() LogEvent
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent
	FatalWith() LogEvent
	PanicWith() LogEvent

	// WithLevel returns an event for a level chosen at runtime.
	WithLevel(level zerolog.Level) LogEvent

	// With for context logger creation
	// Creates a new logger with pre-populated fields that will be included in all subsequent logs
	// Example: reqLogger := logger.With().Str("request_id", id).Logger()
	With() LogContext
}
