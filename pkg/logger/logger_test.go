package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/mru-results-api/pkg/config"
	"github.com/noah-isme/mru-results-api/pkg/middleware/requestid"
)

func TestGinMiddlewareLevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(requestid.Middleware(), GinMiddleware(zap.New(core), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/sync/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/api/v1/sync", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/sync", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/health", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/sync/abc", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "/api/v1/sync/:id", entries[0].ContextMap()["route"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestForRunScopesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ForRun(zap.New(core), "run-1", "acad_results").Info("page committed")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "run-1", fields["sync_id"])
	assert.Equal(t, "acad_results", fields["table"])

	assert.NotPanics(t, func() { ForRun(nil, "run-2", "acad_results").Info("noop") })
}

func TestNewHonoursLogSettings(t *testing.T) {
	cfg := &config.Config{Env: config.EnvDevelopment}
	cfg.Log.Level = "warn"
	cfg.Log.Format = "console"

	l, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
