package appconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"eversoul.dev/stageguide/internal/app/appcontext"
)

const envPrefix = "stageguide"

func Parse(ctx appcontext.Ctx) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	var config ConfigSpec
	err = envconfig.Process(envPrefix, &config)
	if err != nil {
		_ = envconfig.Usage(envPrefix, &config)
		return nil, fmt.Errorf("failed to parse configuration: %w. More info on how to configure this service is located at https://pkg.go.dev/eversoul.dev/stageguide/internal/app/appconfig#ConfigSpec", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Config{
		ConfigSpec: config,
		AppContext: ctx,
	}, nil
}

// Validate rejects values envconfig accepts but the service cannot run with.
func (c *ConfigSpec) Validate() error {
	positive := []struct {
		name string
		d    time.Duration
	}{
		{"REFRESH_WORKER_INTERVAL", c.RefreshWorkerInterval},
		{"CACHE_EXPIRY", c.CacheExpiry},
		{"ORIGIN_TIMEOUT", c.OriginTimeout},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return errors.Errorf("%s_%s must be a positive duration, got %s", strings.ToUpper(envPrefix), p.name, p.d)
		}
	}
	if c.RefreshRetryDelay < 0 {
		return errors.Errorf("%s_REFRESH_RETRY_DELAY must not be negative, got %s", strings.ToUpper(envPrefix), c.RefreshRetryDelay)
	}
	return nil
}
