package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vcs/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(logging.RequestIDKey).(string)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
}

func TestRecover(t *testing.T) {
	h := Chain(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		Logger(logging.Nop()),
		Recover(logging.Nop()),
		RequestID,
	)

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggerRecordsAnnotations(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := &logging.Logger{Logger: zap.New(core)}

	h := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Annotate(r.Context(), zap.String("digest", "2cf24dba"))
			w.Write([]byte("hello"))
		}),
		Logger(logger),
		RequestID,
	)

	req := httptest.NewRequest("GET", "/api/objects/2cf24dba", nil)
	req.Header.Set("X-Request-ID", "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "2cf24dba", fields["digest"])
	assert.Equal(t, int64(5), fields["bytes"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestAnnotateWithoutLogger(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.NotPanics(t, func() { Annotate(req.Context(), zap.String("commit", "1")) })
}
