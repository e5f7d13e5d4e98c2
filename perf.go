package logging

import (
	"sort"
	"time"
)

// PerfTracker times one unit of work and reports it as a perf event, which
// the pipeline routes to the perf table.
//
//	perf := logging.NewPerfTracker(log, "GetProducts", "GET /products")
//	defer perf.Stop(nil)
type PerfTracker struct {
	logger     Logger
	perfItem   string
	actionName string
	start      time.Time
}

// NewPerfTracker starts timing perfItem.
func NewPerfTracker(l Logger, perfItem, actionName string) *PerfTracker {
	return &PerfTracker{
		logger:     l,
		perfItem:   perfItem,
		actionName: actionName,
		start:      time.Now(),
	}
}

// Stop logs the elapsed time with the optional details and returns it.
func (p *PerfTracker) Stop(details map[string]string) time.Duration {
	elapsed := time.Since(p.start)
	if p.logger == nil {
		return elapsed
	}

	evt := p.logger.InfoWith().
		Str(FieldPerfItem, p.perfItem).
		Str(FieldActionName, p.actionName).
		Int64(FieldElapsedMilliseconds, elapsed.Milliseconds())

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		evt.Str(k, details[k])
	}

	evt.Msg(p.perfItem)
	return elapsed
}

// Usage returns an Info event tagged with usageName, which the pipeline
// routes to the usage index.
//
//	logging.Usage(log, "ProductSearch").Str("term", q).Msg("search")
func Usage(l Logger, usageName string) LogEvent {
	return l.InfoWith().Str(FieldUsageName, usageName)
}
