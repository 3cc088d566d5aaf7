package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset. Local development only.
const DevJWTSecret = "dev_insecure_jwt_secret"

// Config holds every setting the service reads from the environment.
type Config struct {
	// HTTP
	Port               string   `envconfig:"PORT" default:"8080"`
	GinMode            string   `envconfig:"GIN_MODE" default:"debug"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`

	// Storage
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	DBMaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`

	// Tokens
	JWTSecret         string        `envconfig:"JWT_SECRET" default:"dev_insecure_jwt_secret"`
	LegacyTokenSecret string        `envconfig:"LEGACY_TOKEN_SECRET"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	LegacyTokenMaxAge time.Duration `envconfig:"LEGACY_TOKEN_MAX_AGE" default:"168h"`
	TokenIssuer       string        `envconfig:"TOKEN_ISSUER" default:"authgate"`

	// Admin guard
	AdminAPISecret      string `envconfig:"ADMIN_API_SECRET"`
	AdminTrustedHeaders bool   `envconfig:"ADMIN_TRUSTED_HEADERS" default:"false"`

	// Login throttling
	RedisURL        string        `envconfig:"REDIS_URL"`
	LoginRateLimit  int           `envconfig:"LOGIN_RATE_LIMIT" default:"20"`
	LoginRateWindow time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"5m"`
}

// Load reads configs/.env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		slog.Debug("no configs/.env file loaded", "error", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DevJWTSecret
	}
	if cfg.LegacyTokenSecret == "" {
		cfg.LegacyTokenSecret = cfg.JWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that must never reach a release deployment.
func (c *Config) Validate() error {
	if c.IsRelease() && c.JWTSecret == DevJWTSecret {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
