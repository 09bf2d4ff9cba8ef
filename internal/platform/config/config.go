package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for the gateway.
type Config struct {
	// HTTP listen address.
	Addr string `env:"OAUTH_GATEWAY_ADDR" envDefault:":8080"`

	// Environment controls log format and dev-key fallback.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// HS256 key for access and refresh tokens. Required outside
	// development; loaded once at startup and never rotated mid-process.
	JWTSigningKey string `env:"JWT_SIGNING_KEY"`

	// The single registered client.
	ClientID     string `env:"OAUTH_CLIENT_ID" envDefault:"waveerchat_client_123"`
	ClientSecret string `env:"OAUTH_CLIENT_SECRET" envDefault:"waveerchat_secret_xyz"`

	// Artifact lifetimes.
	StateTTL        time.Duration `env:"STATE_TTL" envDefault:"10m"`
	AuthCodeTTL     time.Duration `env:"AUTH_CODE_TTL" envDefault:"10m"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// Optional Redis backend for the state and code registries.
	// Empty means in-memory registries.
	RedisURL string `env:"REDIS_URL"`

	// Optional Postgres DSN for the profiles credential store. Empty
	// means the seeded in-memory store (dev only).
	PostgresDSN string `env:"POSTGRES_DSN"`

	// Origins allowed to call the API endpoints cross-origin.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080,http://localhost:5173"`

	// Background sweep of expired states and codes. Lookups already
	// self-expire, so disabling the sweep only affects memory growth.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	SweepEnabled  bool          `env:"SWEEP_ENABLED" envDefault:"true"`
}

// Load reads .env.local / .env if present, parses the environment, and
// validates the result so main stays lean.
func Load() (Config, error) {
	// Missing files are fine; real environments set vars directly.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSigningKey == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SIGNING_KEY is required outside development")
		}
		c.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET must be set")
	}
	if c.StateTTL <= 0 || c.AuthCodeTTL <= 0 || c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("artifact lifetimes must be positive")
	}
	return nil
}

// IsDevelopment reports whether the gateway runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
