package voclient

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config carries client-wide settings. Defaults can be loaded via envdecode.
type Config struct {
	// Timeout for the underlying HTTP client. ENV: VOCLIENT_TIMEOUT
	Timeout time.Duration `env:"VOCLIENT_TIMEOUT,default=30s"`
	// UserAgent sent with every request. ENV: VOCLIENT_USER_AGENT
	UserAgent string `env:"VOCLIENT_USER_AGENT,default=voclient/1"`
	// CapabilityTTL bounds how long fetched capability documents are reused
	// from the cache. ENV: VOCLIENT_CAPABILITY_TTL
	CapabilityTTL time.Duration `env:"VOCLIENT_CAPABILITY_TTL,default=6h"`
}

// ConfigFromEnv populates a Config from the environment, falling back to the
// struct tag defaults.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("voclient: decode config: %w", err)
	}
	return cfg, nil
}
