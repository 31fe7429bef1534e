package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/campusgate/campusgate/internal/auth"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// JWTSecret signs bearer tokens. Process-wide and static; rotating
	// it invalidates every outstanding token.
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"336h"`

	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`

	// AuthSchemes is the ordered pipeline, e.g. "basic,bearer" or
	// "form,bearer". Typically one password scheme plus bearer.
	AuthSchemes   string `envconfig:"AUTH_SCHEMES" default:"basic,bearer"`
	UsernameField string `envconfig:"AUTH_USERNAME_FIELD" default:"username"`
	PasswordField string `envconfig:"AUTH_PASSWORD_FIELD" default:"password"`

	// PGDSN selects the PostgreSQL user registry. Empty runs with the
	// seeded in-memory registry.
	PGDSN string `envconfig:"PG_DSN"`

	// RedisAddr enables the user cache and the audit job queue. Empty
	// disables both.
	RedisAddr    string        `envconfig:"REDIS_ADDR"`
	UserCacheTTL time.Duration `envconfig:"USER_CACHE_TTL" default:"5m"`

	LoginRateLimit int `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
}

// LoadConfig reads configuration from environment variables. Crypto
// misconfiguration is rejected here so startup fails loudly instead of
// degrading.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.JWTSecret) < auth.MinSigningKeyLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", auth.MinSigningKeyLen)
	}
	if len(cfg.SchemeNames()) == 0 {
		return nil, errors.New("at least one auth scheme must be configured")
	}
	return &cfg, nil
}

// SchemeNames returns the configured scheme order.
func (c *Config) SchemeNames() []string {
	parts := strings.Split(c.AuthSchemes, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
