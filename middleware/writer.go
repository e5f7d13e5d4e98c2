package middleware

import "net/http"

// StatusResponseWriter records the status written by a handler, which
// http.ResponseWriter does not expose.
type StatusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *StatusResponseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Status is the written status, or 200 when the handler wrote nothing.
func (w *StatusResponseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// WroteHeader reports whether the response has been started.
func (w *StatusResponseWriter) WroteHeader() bool {
	return w.status != 0
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *StatusResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
