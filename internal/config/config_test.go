package config

import (
	"testing"
	"time"

	"github.com/parcelbridge/rating/pkg/carrier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("UPS_CLIENT_ID", "client-id")
	t.Setenv("UPS_CLIENT_SECRET", "client-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://wwwcie.ups.com", cfg.UPSBaseURL)
	assert.Equal(t, "https://onlinetools.ups.com/security/v1/oauth/token", cfg.UPSAuthURL)
	assert.Equal(t, "v2409", cfg.UPSVersion)
	assert.Equal(t, "Rate", cfg.UPSRequestOption)
	assert.Equal(t, 30*time.Second, cfg.UPSTimeout())
	assert.True(t, cfg.UPSEnabled)
	assert.False(t, cfg.UPSUseMock)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("UPS_CLIENT_ID", "client-id")
	t.Setenv("UPS_CLIENT_SECRET", "client-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("UPS_TIMEOUT_SECONDS", "10")
	t.Setenv("UPS_REQUEST_OPTION", "Shop")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.UPSTimeout())
	assert.Equal(t, "Shop", cfg.UPSRequestOption)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("UPS_CLIENT_ID", "")
	t.Setenv("UPS_CLIENT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	var cerr *carrier.CarrierError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, carrier.CodeConfigError, cerr.Code)
}

func TestLoad_MockDoesNotRequireCredentials(t *testing.T) {
	t.Setenv("UPS_CLIENT_ID", "")
	t.Setenv("UPS_CLIENT_SECRET", "")
	t.Setenv("UPS_USE_MOCK", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UPSUseMock)
}

func TestLoad_DisabledDoesNotRequireCredentials(t *testing.T) {
	t.Setenv("UPS_CLIENT_ID", "")
	t.Setenv("UPS_CLIENT_SECRET", "")
	t.Setenv("UPS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.UPSEnabled)
}
