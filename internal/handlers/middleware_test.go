package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/juancollazo-ch/monoparts-service/internal/logging"
)

func TestTraceIDFromHeader(t *testing.T) {
	assert.Equal(t, "abc", TraceIDFromHeader("abc/123;o=1"))
	assert.Equal(t, "abc", TraceIDFromHeader("abc"))
	assert.Equal(t, "", TraceIDFromHeader(""))
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	var seen string
	h := WithLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.TraceID(r.Context())
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/monoparts/callback", nil)
	req.Header.Set("X-Cloud-Trace-Context", "trace-42/1;o=1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "trace-42", seen)
	require.Equal(t, 2, logs.Len())
	done := logs.All()[1]
	assert.Equal(t, "Request completed", done.Message)
	assert.Equal(t, int64(http.StatusAccepted), done.ContextMap()["httpRequest.status"])

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, seen, 36)
}
