package middleware

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logging "github.com/Station-Manager/apibooster"
	"github.com/Station-Manager/apibooster/errorrecord"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/42", nil))
	return rec
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUseAPIExceptionHandler_Panic(t *testing.T) {
	svc, sink := newCapturingService(t)

	h := UseAPIExceptionHandler(svc)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("stock service unavailable")
	}))
	rec := serve(t, h)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeAPIError(t, rec)
	_, err := uuid.Parse(body.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, body.Status)
	assert.Equal(t, DefaultErrorTitle, body.Title)
	assert.Nil(t, body.Error, "error record is not exposed by default")

	events := flush(t, svc, sink)
	require.Len(t, events, 1)
	evt := events[0]
	assert.Equal(t, "error", evt.Str(zerolog.LevelFieldName))
	assert.Equal(t, body.ID, evt.Str(logging.FieldErrorID))
	assert.Equal(t, "BADNESS!!! stock service unavailable -- "+body.ID, evt.Str(zerolog.MessageFieldName))

	record, ok := evt[logging.FieldErrorRecord].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "panic(string)", record["exceptionType"])
	assert.Equal(t, "stock service unavailable", record["message"])
}

func TestUseAPIExceptionHandler_HandleReturnsError(t *testing.T) {
	svc, sink := newCapturingService(t)

	root := stderrs.New("connection refused")
	h := UseAPIExceptionHandler(svc)(Handle(func(http.ResponseWriter, *http.Request) error {
		return fmt.Errorf("load product: %w", root)
	}))
	rec := serve(t, h)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeAPIError(t, rec)

	events := flush(t, svc, sink)
	require.Len(t, events, 1)
	assert.Equal(t, "BADNESS!!! connection refused -- "+body.ID, events[0].Str(zerolog.MessageFieldName))

	record, ok := events[0][logging.FieldErrorRecord].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "load product: connection refused", record["message"])
	inner, ok := record["innerError"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "connection refused", inner["message"])
}

func TestUseAPIExceptionHandler_Options(t *testing.T) {
	svc, sink := newCapturingService(t)

	notFound := stderrs.New("product not found")
	h := UseAPIExceptionHandler(svc, func(o *APIExceptionOptions) {
		o.IncludeErrorRecord = true
		o.AddResponseDetails = func(_ *http.Request, ex errorrecord.Exception, apiErr *APIError) {
			if ex.Message() == notFound.Error() {
				apiErr.Status = http.StatusNotFound
				apiErr.Title = "Not found"
				apiErr.Detail = ex.Message()
			}
		}
		o.DetermineLogLevel = func(errorrecord.Exception) zerolog.Level {
			return zerolog.WarnLevel
		}
	})(Handle(func(http.ResponseWriter, *http.Request) error {
		return notFound
	}))
	rec := serve(t, h)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeAPIError(t, rec)
	assert.Equal(t, "Not found", body.Title)
	assert.Equal(t, "product not found", body.Detail)
	require.NotNil(t, body.Error)
	assert.Equal(t, "product not found", body.Error.Message)

	events := flush(t, svc, sink)
	require.Len(t, events, 1)
	assert.Equal(t, "warn", events[0].Str(zerolog.LevelFieldName))
}

func TestUseAPIExceptionHandler_NoFailure(t *testing.T) {
	svc, sink := newCapturingService(t)

	h := UseAPIExceptionHandler(svc)(Handle(func(w http.ResponseWriter, _ *http.Request) error {
		_, err := w.Write([]byte("ok"))
		return err
	}))
	rec := serve(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, flush(t, svc, sink))
}

func TestUseAPIExceptionHandler_ResponseAlreadyStarted(t *testing.T) {
	svc, sink := newCapturingService(t)

	h := UseAPIExceptionHandler(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late failure")
	}))
	rec := serve(t, h)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), DefaultErrorTitle))
	assert.Len(t, flush(t, svc, sink), 1, "the failure is still logged")
}

func TestUseAPIExceptionHandler_AbortHandlerPropagates(t *testing.T) {
	svc, _ := newCapturingService(t)

	h := UseAPIExceptionHandler(svc)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() { serve(t, h) })
}

func TestUseAPIExceptionHandler_PrefersRequestLogger(t *testing.T) {
	svc, sink := newCapturingService(t)

	h := RequestLogger(svc)(UseAPIExceptionHandler(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	serve(t, h)

	events := flush(t, svc, sink)
	require.Len(t, events, 1)
	assert.Equal(t, http.MethodGet, events[0].Str(logging.FieldRequestMethod))
	assert.Equal(t, "/products/42", events[0].Str(logging.FieldRequestPath))
}
