package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, healthHealthy, env.Data.Status)
	for _, name := range []string{"database", "search", "cache"} {
		require.Contains(t, env.Data.Components, name)
		assert.Equal(t, healthHealthy, env.Data.Components[name].Status, name)
	}
}

func TestHealthCheck_DegradedWhenCacheClosed(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.cache.Close())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, healthDegraded, env.Data.Status)
	assert.Equal(t, healthDegraded, env.Data.Components["cache"].Status)
	assert.NotEmpty(t, env.Data.Components["cache"].Message)
}
