package middleware

import (
	"net/http"

	logging "github.com/Station-Manager/apibooster"
)

// RequestLogger stores svc.ForRequest(r) in the request context, where
// logging.FromContext and the other middlewares pick it up. Install it after
// Authenticate so the logger carries the UserInfo.
func RequestLogger(svc *logging.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logging.NewContext(r.Context(), svc.ForRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
