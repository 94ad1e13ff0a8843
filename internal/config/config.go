// Package config resolves all runtime configuration once at startup. The
// resulting struct is passed by reference to every component that needs it;
// nothing else in the codebase reads environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// insecureFallbackSecret is the development-only JWT secret. A production
// deployment still carrying it is a misconfiguration and refuses to start.
const insecureFallbackSecret = "fallback_jwt_secret_not_secure"

// Config holds every tunable of the auth API.
type Config struct {
	Env       string `env:"APP_ENV"    envDefault:"development"`
	Port      int    `env:"PORT"       envDefault:"5000"`
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`

	MongoURI      string `env:"MONGODB_URI"      envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"moodsync"`

	JWTSecret    string        `env:"JWT_SECRET"     envDefault:"fallback_jwt_secret_not_secure"`
	JWTIssuer    string        `env:"JWT_ISSUER"     envDefault:"moodsync-api"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"168h"`

	BcryptCost       int           `env:"BCRYPT_COST"              envDefault:"12"`
	MaxLoginAttempts int           `env:"MAX_LOGIN_ATTEMPTS"       envDefault:"5"`
	LockoutDuration  time.Duration `env:"LOCKOUT_DURATION"         envDefault:"30m"`
	ResetTokenTTL    time.Duration `env:"PASSWORD_RESET_TOKEN_TTL" envDefault:"1h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
}

// Load parses the environment into a Config and validates it eagerly.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations that must never reach a running process.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI must not be empty")
	}

	if c.IsProduction() {
		if c.JWTSecret == "" || c.JWTSecret == insecureFallbackSecret {
			return fmt.Errorf("JWT_SECRET must be set to a real secret in production")
		}
	}

	if c.MaxLoginAttempts < 1 {
		return fmt.Errorf("MAX_LOGIN_ATTEMPTS must be at least 1")
	}

	return nil
}

// IsProduction reports whether the deployment is marked production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment reports whether the deployment runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
