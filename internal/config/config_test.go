package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COMMERCE_CLIENT_ID", "")
	t.Setenv("COMMERCE_SECONDARY_PRODUCT_ID", "")
	t.Setenv("ACCESS_BYPASS_EMAILS", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("APP_HOST", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.UsesDefaultSecret())

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, DefaultCommerceAuthURL, cfg.Commerce.AuthURL)
	assert.Equal(t, DefaultCommerceAPIBaseURL, cfg.Commerce.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.Commerce.RequestTimeout)
	assert.True(t, cfg.Commerce.InvalidStatusVeto)
	assert.Equal(t, DefaultFipeBaseURL, cfg.Fipe.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.Fipe.CacheTTL)
	assert.Equal(t, DefaultGeminiModel, cfg.Gemini.Model)
	assert.Equal(t, 12*time.Hour, cfg.Auth.AccessPassTTL())
	assert.Nil(t, cfg.Auth.BypassEmails)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("COMMERCE_CLIENT_ID", "client")
	t.Setenv("COMMERCE_CLIENT_SECRET", "secret")
	t.Setenv("COMMERCE_PRODUCT_ID", "123")
	t.Setenv("COMMERCE_SECONDARY_PRODUCT_ID", " 456 ")
	t.Setenv("COMMERCE_REQUEST_TIMEOUT", "2s")
	t.Setenv("COMMERCE_INVALID_STATUS_VETO", "false")
	t.Setenv("ACCESS_BYPASS_EMAILS", "a@example.com, ,b@example.com")
	t.Setenv("FIPE_CACHE_TTL", "not-a-duration")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 2*time.Second, cfg.Commerce.RequestTimeout)
	assert.False(t, cfg.Commerce.InvalidStatusVeto)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Auth.BypassEmails)
	assert.Equal(t, 24*time.Hour, cfg.Fipe.CacheTTL)
	assert.Equal(t, []string{"123", "456"}, cfg.Commerce.ProductIDs())
	assert.NoError(t, cfg.Commerce.Validate())
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("REDIS_DB", "")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "AUTH_JWT_SECRET")

	t.Setenv("AUTH_JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.App.IsProduction())
	assert.False(t, cfg.Auth.UsesDefaultSecret())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")

	_, err := Load()
	assert.Error(t, err)
}

func TestCommerceConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CommerceConfig
		missing []string
	}{
		{
			name:    "all missing",
			cfg:     CommerceConfig{},
			missing: []string{"COMMERCE_CLIENT_ID", "COMMERCE_CLIENT_SECRET", "COMMERCE_PRODUCT_ID"},
		},
		{
			name:    "secret missing",
			cfg:     CommerceConfig{ClientID: "id", PrimaryProductID: "1"},
			missing: []string{"COMMERCE_CLIENT_SECRET"},
		},
		{
			name:    "blank product",
			cfg:     CommerceConfig{ClientID: "id", ClientSecret: "s", PrimaryProductID: "  "},
			missing: []string{"COMMERCE_PRODUCT_ID"},
		},
		{
			name: "complete",
			cfg:  CommerceConfig{ClientID: "id", ClientSecret: "s", PrimaryProductID: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, tt.cfg.Missing())
			if tt.missing == nil {
				assert.NoError(t, tt.cfg.Validate())
			} else {
				assert.Error(t, tt.cfg.Validate())
			}
		})
	}
}

func TestCommerceConfig_ProductIDs_PrimaryOnly(t *testing.T) {
	cfg := CommerceConfig{PrimaryProductID: "123"}
	assert.Equal(t, []string{"123"}, cfg.ProductIDs())
}
