package logging

import "github.com/prometheus/client_golang/prometheus"

//nolint:gochecknoglobals // collectors have to be global for prometheus
var (
	sinkFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apibooster_log_sink_failures_total",
		Help: "Log events a sink failed to store.",
	}, []string{"sink"})

	sinkDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apibooster_log_sink_dropped_total",
		Help: "Log events dropped because a sink queue was full.",
	}, []string{"sink"})

	_ = prometheus.Register(sinkFailures)
	_ = prometheus.Register(sinkDropped)
)
