package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, body)
	})
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	var seen string
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, "front-desk-42")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "front-desk-42", seen)
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		handler := CORSMiddleware(nil)(okHandler("unreachable"))

		req := httptest.NewRequest(http.MethodOptions, "/api/visits/v1/bills/lab/items/x", nil)
		req.Header.Set("Origin", "http://desk.local")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Empty(t, w.Body.String())
	})

	t.Run("explicit origins", func(t *testing.T) {
		handler := CORSMiddleware([]string{" http://desk.local ", ""})(okHandler("ok"))

		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://desk.local")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, "http://desk.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))

		req = httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://elsewhere")
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "ok", w.Body.String())
	})
}

func TestResponseOptimization(t *testing.T) {
	t.Run("compresses api responses", func(t *testing.T) {
		handler := ResponseOptimization(okHandler(`{"status":"ok"}`))

		req := httptest.NewRequest("GET", "/api/visits/v1", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

		gz, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(gz)
		require.NoError(t, err)
		assert.Equal(t, `{"status":"ok"}`, string(body))
	})

	t.Run("leaves streams alone", func(t *testing.T) {
		handler := ResponseOptimization(okHandler("event: heartbeat\n\n"))

		req := httptest.NewRequest("GET", "/api/stream/visits/v1", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, "event: heartbeat\n\n", w.Body.String())
	})

	t.Run("catalog reads are briefly cacheable", func(t *testing.T) {
		handler := ResponseOptimization(okHandler("[]"))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/catalog/pharmacy?q=para", nil))
		assert.Equal(t, "private, max-age=60, must-revalidate", w.Header().Get("Cache-Control"))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/incentives/pay", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestObservabilityMiddleware_KeepsFlusher(t *testing.T) {
	flushed := false
	handler := ObservabilityMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok)
		f.Flush()
		flushed = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/stream/visits/v1", nil))
	assert.True(t, flushed)
	assert.True(t, w.Flushed)
}
