package appconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validSpec() ConfigSpec {
	return ConfigSpec{
		RefreshWorkerInterval: 2 * time.Hour,
		CacheExpiry:           2 * time.Hour,
		OriginTimeout:         30 * time.Second,
		RefreshRetryDelay:     2 * time.Second,
	}
}

func TestConfigSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ConfigSpec)
		wantErr string
	}{
		{"defaults", func(c *ConfigSpec) {}, ""},
		{"zero worker interval", func(c *ConfigSpec) { c.RefreshWorkerInterval = 0 }, "STAGEGUIDE_REFRESH_WORKER_INTERVAL"},
		{"negative worker interval", func(c *ConfigSpec) { c.RefreshWorkerInterval = -time.Second }, "STAGEGUIDE_REFRESH_WORKER_INTERVAL"},
		{"zero cache expiry", func(c *ConfigSpec) { c.CacheExpiry = 0 }, "STAGEGUIDE_CACHE_EXPIRY"},
		{"zero origin timeout", func(c *ConfigSpec) { c.OriginTimeout = 0 }, "STAGEGUIDE_ORIGIN_TIMEOUT"},
		{"zero retry delay", func(c *ConfigSpec) { c.RefreshRetryDelay = 0 }, ""},
		{"negative retry delay", func(c *ConfigSpec) { c.RefreshRetryDelay = -time.Second }, "STAGEGUIDE_REFRESH_RETRY_DELAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validSpec()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
