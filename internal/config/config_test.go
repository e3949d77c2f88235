package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://www.ebay.com/sch/i.html?_nkw=", cfg.Search.EbayEndpoint)
	assert.Equal(t, 4, cfg.Search.DetailConcurrency)
	assert.Equal(t, 10, cfg.Search.ResultLimit)
	assert.Equal(t, "ebay", cfg.Search.DefaultSite)
	assert.Zero(t, cfg.HTTP.Timeout)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Redis.CacheTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SEARCH_DETAIL_CONCURRENCY", "8")
	t.Setenv("SEARCH_DEFAULT_SITE", "amazon")
	t.Setenv("HTTP_RATE_LIMIT_MIN", "1s")
	t.Setenv("HTTP_RATE_LIMIT_MAX", "3s")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://localhost:3000, https://example.com")
	t.Setenv("SEARCH_RESULT_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Search.DetailConcurrency)
	assert.Equal(t, "amazon", cfg.Search.DefaultSite)
	assert.Equal(t, time.Second, cfg.HTTP.RateLimitMin)
	assert.Equal(t, 3*time.Second, cfg.HTTP.RateLimitMax)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10, cfg.Search.ResultLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero concurrency", func(c *Config) { c.Search.DetailConcurrency = 0 }, "SEARCH_DETAIL_CONCURRENCY"},
		{"zero limit", func(c *Config) { c.Search.ResultLimit = 0 }, "SEARCH_RESULT_LIMIT"},
		{"empty endpoint", func(c *Config) { c.Search.EbayEndpoint = "" }, "endpoints"},
		{"inverted delays", func(c *Config) {
			c.HTTP.RateLimitMin = 2 * time.Second
			c.HTTP.RateLimitMax = time.Second
		}, "HTTP_RATE_LIMIT_MIN"},
		{"redis without ttl", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.CacheTTL = 0
		}, "CACHE_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
