package socialservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecomnet/telecom-social/internal/auth"
	"github.com/telecomnet/telecom-social/internal/config"
	"github.com/telecomnet/telecom-social/internal/factory"
	"github.com/telecomnet/telecom-social/internal/health"
	"github.com/telecomnet/telecom-social/internal/localstate"
)

func TestCalculateStartupHealthTimeout(t *testing.T) {
	tests := []struct {
		interval int
		want     int
	}{
		{interval: 0, want: 60},
		{interval: 5, want: 60},
		{interval: 30, want: 60},
		{interval: 31, want: 62},
		{interval: 120, want: 240},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateStartupHealthTimeout(tt.interval), "interval=%d", tt.interval)
	}
}

func TestWaitUntilHealthy_ContextCancelled(t *testing.T) {
	cfg := config.NewForTesting()
	// Never started, so it stays unhealthy.
	svcHealth := health.NewServiceHealthChecker(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := waitUntilHealthy(ctx, cfg, svcHealth)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStartup_WiresServicesAndHealth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.NewForTesting()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "social.db")
	cfg.HealthIntervalSeconds = 1
	log := zerolog.Nop()

	db, err := factory.NewStore(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	deps := buildServices(db, cfg, log)
	require.NoError(t, localstate.EnsureDefaultUser(ctx, deps.Users))

	svcHealth := startHealthCheckers(ctx, cfg, log, db)
	require.NoError(t, waitUntilHealthy(ctx, cfg, svcHealth))

	authn, err := auth.NewAuthenticator(cfg)
	require.NoError(t, err)
	deps.Auth = authn
	deps.Healthy = svcHealth.IsHealthy
	deps.Components = svcHealth.Components
	srv := httptest.NewServer(buildRouter(deps))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Status     string          `json:"status"`
		Components map[string]bool `json:"components"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.True(t, body.Components["store"])

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/users/"+localstate.DefaultUserID, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.DevToken(localstate.DefaultUserID, false))
	me, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer me.Body.Close()
	assert.Equal(t, http.StatusOK, me.StatusCode)
}

func TestNewHTTPServer_UsesConfiguredPort(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.HTTPPort = 9123
	srv := newHTTPServer(context.Background(), cfg, http.NotFoundHandler())
	assert.Equal(t, ":9123", srv.Addr)
	assert.Equal(t, 15*time.Second, srv.WriteTimeout)
}
