// Package logging provides the standard logging pipeline for API services:
// a concurrency-safe wrapper over rs/zerolog with a structured-first API,
// console output, rotating log files and three downstream sinks.
//
// Key features
//   - Structured logging only: prefer typed fields over printf-style helpers
//   - Context loggers via With() for per-request scoping; ForRequest adds the
//     request method, path and the authenticated UserInfo
//   - Graceful shutdown that waits for in-flight logs (bounded timeout)
//   - File rotation via lumberjack and configurable console formatting
//   - Every event carries MachineName, Assembly and Version
//   - Sink routing by event property:
//     events with ElapsedMilliseconds go to the perf table (SQL, via gorm),
//     events with UsageName go to the usage-YYYY.MM.DD index and everything
//     else goes to the error-YYYY.MM.DD index (Elasticsearch)
//   - Error history enrichment: for any Err/AnErr, the logger includes
//     the full error chain (outermost -> root), the root cause string, a
//     joined human-readable history, the operations chain (when using
//     Station-Manager DetailedError), and the root operation if available.
//
// Typical usage
//
//	cfg, err := logging.LoadConfig(".")
//	if err != nil { panic(err) }
//	svc := logging.NewService(wd, cfg)
//	if err := svc.Initialize(); err != nil { panic(err) }
//	defer svc.Close()
//
//	svc.InfoWith().Str("user_id", id).Msg("processed")
//	logging.Usage(svc, "ProductSearch").Msg("search")
//	perf := logging.NewPerfTracker(svc, "GetProducts", "GET /products")
//	defer perf.Stop(nil)
package logging
