package middleware

import (
	"fmt"
	"net/http"

	logging "github.com/Station-Manager/apibooster"
	"github.com/Station-Manager/apibooster/errorrecord"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultErrorTitle is the Title of every APIError unless AddResponseDetails
// replaces it.
const DefaultErrorTitle = "Some kind of error occurred in the API. Please use the id and contact our support team if the problem persists."

// APIError is the JSON body written for a failed request.
type APIError struct {
	ID     string                   `json:"id"`
	Status int                      `json:"status"`
	Title  string                   `json:"title"`
	Detail string                   `json:"detail,omitempty"`
	Error  *errorrecord.ErrorRecord `json:"error,omitempty"`
}

// APIExceptionOptions customise UseAPIExceptionHandler.
type APIExceptionOptions struct {
	// AddResponseDetails may change the response before it is logged and
	// written, e.g. to map known errors to a 4xx status.
	AddResponseDetails func(r *http.Request, ex errorrecord.Exception, apiErr *APIError)
	// DetermineLogLevel picks the level of the log entry. Defaults to error.
	DetermineLogLevel func(ex errorrecord.Exception) zerolog.Level
	// IncludeErrorRecord exposes the full error record in the response body.
	IncludeErrorRecord bool
}

// handlerError carries an error returned by a Handle func up to the
// exception handler.
type handlerError struct {
	err error
}

// Handle adapts a handler that returns an error. A non-nil error is reported
// by the enclosing UseAPIExceptionHandler exactly like a panic, without the
// panic stack. Handle must run beneath UseAPIExceptionHandler.
func Handle(fn func(w http.ResponseWriter, r *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			panic(handlerError{err: err})
		}
	})
}

// UseAPIExceptionHandler recovers failures from downstream handlers, logs
// them with their error record and answers with an APIError. The request
// scoped logger stored by RequestLogger is preferred over logger.
func UseAPIExceptionHandler(logger logging.Logger, configure ...func(*APIExceptionOptions)) func(http.Handler) http.Handler {
	opts := &APIExceptionOptions{}
	for _, fn := range configure {
		if fn != nil {
			fn(opts)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &StatusResponseWriter{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				var ex errorrecord.Exception
				if he, ok := v.(handlerError); ok {
					ex = errorrecord.FromError(he.err)
				} else {
					ex = errorrecord.Recovered(v)
				}
				opts.handle(sw, r, logging.FromContextOr(r.Context(), logger), ex)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

func (o *APIExceptionOptions) handle(w *StatusResponseWriter, r *http.Request, l logging.Logger, ex errorrecord.Exception) {
	rec := errorrecord.Build(ex)
	apiErr := &APIError{
		ID:     uuid.NewString(),
		Status: http.StatusInternalServerError,
		Title:  DefaultErrorTitle,
	}
	if o.AddResponseDetails != nil {
		o.AddResponseDetails(r, ex, apiErr)
	}

	level := zerolog.ErrorLevel
	if o.DetermineLogLevel != nil {
		level = o.DetermineLogLevel(ex)
	}

	if l != nil {
		l.WithLevel(level).
			Str(logging.FieldErrorID, apiErr.ID).
			Record(rec).
			Msg(fmt.Sprintf("BADNESS!!! %s -- %s", errorrecord.InnermostMessage(ex), apiErr.ID))
		logging.DumpRecord(l, rec)
	}

	if o.IncludeErrorRecord {
		apiErr.Error = rec
	} else {
		apiErr.Error = nil
	}

	// the handler already started the response; nothing more can be sent
	if w.WroteHeader() {
		return
	}

	body, err := json.Marshal(apiErr)
	if err != nil {
		http.Error(w, apiErr.Title, apiErr.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_, _ = w.Write(body)
}
