package middleware

import (
	"net/http"
	"strconv"

	logging "github.com/Station-Manager/apibooster"
	"github.com/gorilla/mux"
)

// DetailStatusCode is the perf detail carrying the response status.
const DetailStatusCode = "StatusCode"

// TrackPerformance emits a perf event for every request. PerfItem is the
// matched mux route template, or the request path outside a mux router, and
// ActionName is "METHOD PerfItem".
func TrackPerformance(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			item := routeTemplate(r)
			perf := logging.NewPerfTracker(logging.FromContextOr(r.Context(), logger), item, r.Method+" "+item)
			sw := &StatusResponseWriter{ResponseWriter: w}

			completed := false
			defer func() {
				status := sw.Status()
				// a panic unwinding through here becomes a 500 further up
				if !completed && !sw.WroteHeader() {
					status = http.StatusInternalServerError
				}
				perf.Stop(map[string]string{DetailStatusCode: strconv.Itoa(status)})
			}()

			next.ServeHTTP(sw, r)
			completed = true
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil && tpl != "" {
			return tpl
		}
	}
	return r.URL.Path
}
