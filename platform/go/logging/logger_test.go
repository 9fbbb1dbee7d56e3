package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerEmitsCloudLoggingSeverity(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Component: "cms-api", Level: "WARN", Output: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("slug backfill failed", zap.String("kind", "categories"))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARNING", entry["severity"])
	assert.Equal(t, "cms-api", entry["component"])
	assert.Equal(t, "categories", entry["kind"])
	assert.Equal(t, "slug backfill failed", entry["message"])
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	handler := RequestLogger(base, "/healthz")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger, ok := FromContext(r.Context())
		require.True(t, ok)
		logger.Info("inside handler")
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/api/v1/blogs", "/healthz", "/boom"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 3)
	assert.Equal(t, zap.InfoLevel, completed[0].Level)
	assert.Equal(t, zap.DebugLevel, completed[1].Level)
	assert.Equal(t, zap.ErrorLevel, completed[2].Level)
	assert.Equal(t, 3, logs.FilterMessage("inside handler").Len())
}
