package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const DefaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/55.0.2919.83 Safari/537.36"

// Config holds the runtime settings read from the environment.
// An empty API URL keeps the exchange table's default.
type Config struct {
	LogLevel    string        `env:"LOG_LEVEL" env-default:"warn"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" env-default:"30s"`
	UserAgent   string        `env:"USER_AGENT"`

	NanoBananoAPIURL   string `env:"NANO_BANANO_API_URL"`
	SolanaBananoAPIURL string `env:"SOLANA_BANANO_API_URL"`
	USDTBananoAPIURL   string `env:"USDT_BANANO_API_URL"`
}

// Load reads an optional .env file and binds the environment into a Config.
func Load(envFiles ...string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.HTTPTimeout < 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must not be negative, got %s", cfg.HTTPTimeout)
	}

	return &cfg, nil
}

// APIOverrides maps exchange keys to the base URLs set in the environment.
func (c *Config) APIOverrides() map[string]string {
	overrides := make(map[string]string, 3)
	if c.NanoBananoAPIURL != "" {
		overrides["nano_banano"] = c.NanoBananoAPIURL
	}
	if c.SolanaBananoAPIURL != "" {
		overrides["solana_banano"] = c.SolanaBananoAPIURL
	}
	if c.USDTBananoAPIURL != "" {
		overrides["usdt_banano"] = c.USDTBananoAPIURL
	}
	return overrides
}
