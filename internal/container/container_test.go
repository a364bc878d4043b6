package container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gotabstat/internal"
	"gotabstat/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNewWiresDependencies(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STRONG_CORRELATION_THRESHOLD", "0.8")
	cfg, err := config.Load()
	require.NoError(t, err)

	c, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, internal.LogLevelDebug, c.Logger.GetLevel())
	assert.NotNil(t, c.Loader)
	assert.NotNil(t, c.Engine)
	assert.NotNil(t, c.Service)

	srv := c.NewAPIServer()
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
