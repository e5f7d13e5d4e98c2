package logging

import "context"

// Route names, also used as the sink label of the sink metrics.
const (
	RoutePerf  = "perf"
	RouteUsage = "usage"
	RouteError = "error"
)

// PerfFilter selects events carrying ElapsedMilliseconds.
func PerfFilter() Filter { return IncludeOnly(FieldElapsedMilliseconds) }

// UsageFilter selects events carrying UsageName.
func UsageFilter() Filter { return IncludeOnly(FieldUsageName) }

// ErrorFilter selects everything that is neither a perf nor a usage event.
func ErrorFilter() Filter { return Excluding(FieldElapsedMilliseconds, FieldUsageName) }

// buildRoutes creates the configured sinks: the perf table when a logging
// database is configured and the usage/error indexes when an Elasticsearch
// URI is configured. Service.Routes are appended as given.
func (s *Service) buildRoutes(ctx context.Context) ([]Route, error) {
	cfg := s.Config
	var routes []Route

	if cfg.LoggingDB.DSN != emptyString {
		db, err := OpenLoggingDB(cfg.LoggingDB)
		if err != nil {
			return nil, err
		}
		sink, err := NewSQLSink(db, SQLSinkOptions{
			TableName:       cfg.PerfTableName,
			AutoCreateTable: cfg.AutoCreateSQLTable,
			CloseDB:         true,
		})
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		routes = append(routes, Route{Name: RoutePerf, Filter: PerfFilter(), Sink: sink})
	}

	if cfg.ElasticsearchURI != emptyString {
		client, err := NewElasticsearchClient(cfg.ElasticsearchURI, cfg.ElasticsearchUsername, cfg.ElasticsearchPassword)
		if err != nil {
			closeRoutes(routes)
			return nil, err
		}

		usage, err := NewElasticsearchSink(ctx, client, ElasticsearchSinkOptions{
			IndexPrefix:          orDefault(cfg.UsageIndexPrefix, defaultUsageIndexPrefix),
			AutoRegisterTemplate: cfg.AutoRegisterTemplate,
		})
		if err != nil {
			closeRoutes(routes)
			return nil, err
		}
		errSink, err := NewElasticsearchSink(ctx, client, ElasticsearchSinkOptions{
			IndexPrefix:          orDefault(cfg.ErrorIndexPrefix, defaultErrorIndexPrefix),
			AutoRegisterTemplate: cfg.AutoRegisterTemplate,
		})
		if err != nil {
			closeRoutes(routes)
			return nil, err
		}

		routes = append(routes,
			Route{Name: RouteUsage, Filter: UsageFilter(), Sink: usage},
			Route{Name: RouteError, Filter: ErrorFilter(), Sink: errSink},
		)
	}

	return append(routes, s.Routes...), nil
}

func closeRoutes(routes []Route) {
	for _, r := range routes {
		_ = r.Sink.Close()
	}
}

func orDefault(v, def string) string {
	if v == emptyString {
		return def
	}
	return v
}
