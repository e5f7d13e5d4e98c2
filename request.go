package logging

import (
	"context"
	"net/http"

	"github.com/Station-Manager/apibooster/identity"
)

// ForRequest returns a child logger carrying the request method and path and,
// for authenticated requests, the UserInfo built from the request identity.
func (s *Service) ForRequest(r *http.Request) Logger {
	return s.ForRequestWith(r, nil)
}

// ForRequestWith is ForRequest with a custom enricher; nil selects the
// default claim exclusions.
func (s *Service) ForRequestWith(r *http.Request, enricher *identity.Enricher) Logger {
	if r == nil {
		return s.With().Logger()
	}
	if enricher == nil {
		enricher = &identity.Enricher{}
	}

	lc := s.With().
		Str(FieldRequestMethod, r.Method).
		Str(FieldRequestPath, r.URL.Path)
	if info := enricher.Enrich(r.Context()); info != nil {
		lc = lc.Interface(FieldUserInfo, info)
	}
	return lc.Logger()
}

type loggerKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) Logger {
	return FromContextOr(ctx, &noopLogger{})
}

// FromContextOr returns the logger stored in ctx, or fallback.
func FromContextOr(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(Logger); ok && l != nil {
			return l
		}
	}
	return fallback
}
