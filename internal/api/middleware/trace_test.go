package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/deckgen-api/internal/api/shared"
	"github.com/phrazzld/deckgen-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	var buf safeBuffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seenTraceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("handler ran")
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/presentations", nil)
	rec := httptest.NewRecorder()
	NewTraceMiddleware(base)(next).ServeHTTP(rec, req)

	assert.Len(t, seenTraceID, 32)
	assert.Equal(t, seenTraceID, rec.Header().Get(TraceHeader))

	logs := buf.String()
	assert.Contains(t, logs, "request started")
	assert.Contains(t, logs, "handler ran")
	assert.Contains(t, logs, "request completed")
	assert.Contains(t, logs, "trace_id="+seenTraceID)
	assert.Contains(t, logs, "status=202")
}

func TestTraceMiddleware_ReusesInboundTraceID(t *testing.T) {
	var seenTraceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(TraceHeader, "upstream-trace-1")
	rec := httptest.NewRecorder()
	NewTraceMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))(next).ServeHTTP(rec, req)

	assert.Equal(t, "upstream-trace-1", seenTraceID)
	assert.Equal(t, "upstream-trace-1", rec.Header().Get(TraceHeader))
}
