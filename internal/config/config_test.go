package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthware/ovenlink/internal/config"
	"github.com/hearthware/ovenlink/pkg/logger"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(logger.NewNoopLogger())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8090", cfg.Server.Addr())
	assert.Equal(t, "https://prod-api.whrcloud.eu/oauth/token", cfg.Cloud.TokenURL())
	assert.Equal(t, "https://cognito-identity.eu-central-1.amazonaws.com/", cfg.Cloud.CredentialExchangeURL())
	assert.NotEmpty(t, cfg.Cloud.AppHeaders["wp-client-brand"])
	assert.NotZero(t, cfg.Session.HealthCheckInterval)
	assert.NotZero(t, cfg.Session.RefreshBuffer)
}

func TestCloudConfig_BrandCredentialFallback(t *testing.T) {
	cfg := &config.CloudConfig{
		DefaultBrand: "whirlpool",
		Brands: map[string]config.BrandCredential{
			"whirlpool": {ClientID: "wp-id", ClientSecret: "wp-secret"},
			"maytag":    {ClientID: "mt-id", ClientSecret: "mt-secret"},
		},
	}

	assert.Equal(t, "mt-id", cfg.BrandCredential("maytag").ClientID)
	assert.Equal(t, "wp-id", cfg.BrandCredential("unknown-brand").ClientID)
}

func TestCloudConfig_URLs(t *testing.T) {
	cfg := &config.CloudConfig{BaseURL: "https://cloud.example", Region: "eu-central-1"}

	assert.Equal(t, "https://cloud.example/api/v1/cognito/identityid", cfg.IdentityURL())
	assert.Equal(t, "https://cloud.example/api/v1/account/favorites/SAID1", cfg.FavouritesURL("SAID1"))

	cfg.ExchangeURL = "http://127.0.0.1:9999/exchange"
	assert.Equal(t, "http://127.0.0.1:9999/exchange", cfg.CredentialExchangeURL())
}
