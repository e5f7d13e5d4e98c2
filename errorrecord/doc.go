// Package errorrecord flattens a failure and its cause chain into an
// ErrorRecord, a serialisable tree that can be returned to API clients or
// handed to log sinks.
//
// Anything that can describe itself through the Exception interface can be
// recorded. FromError adapts ordinary Go errors (including Station-Manager
// DetailedError chains) and FromPanic adapts values recovered from a panic.
//
// Typical usage
//
//	rec := errorrecord.BuildError(err)
//	svc.ErrorWith().Interface("ErrorRecord", rec).Msg(errorrecord.InnermostErrorMessage(err))
//
// Build never fails and never panics: accessors that blow up are recorded as
// absent fields. Cause chains are walked iteratively and truncated after
// MaxDepth records.
package errorrecord
