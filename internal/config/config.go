package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

const devSecret = "quill-development-secret"

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	Env          string
	LogLevel     string
	Storage      string
	DatabasePath string

	JWTSecret  string
	JWTIssuer  string
	TokenTTL   time.Duration
	BcryptCost int

	AllowPasswordChange bool
	CORSAllowedOrigins  []string
	AuthRatePerMinute   int

	EventRetention     time.Duration
	EventPruneSchedule string
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Storage:            strings.ToLower(getEnv("STORAGE", StorageSQLite)),
		DatabasePath:       getEnv("DATABASE_PATH", "./quill.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "quill"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		EventPruneSchedule: getEnv("EVENT_PRUNE_SCHEDULE", "@hourly"),
	}

	var err error
	if cfg.ServerPort, err = getInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if cfg.AllowPasswordChange, err = getBool("ALLOW_PASSWORD_CHANGE", true); err != nil {
		return nil, err
	}
	if cfg.AuthRatePerMinute, err = getInt("AUTH_RATE_PER_MINUTE", 20); err != nil {
		return nil, err
	}
	if cfg.EventRetention, err = getDuration("EVENT_RETENTION", 720*time.Hour); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.ServerPort)
	}
	if c.Storage != StorageMemory && c.Storage != StorageSQLite {
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMemory, StorageSQLite, c.Storage)
	}
	if c.JWTSecret == "" {
		if c.Production() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = devSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.AuthRatePerMinute <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_MINUTE must be positive, got %d", c.AuthRatePerMinute)
	}
	if c.EventRetention <= 0 {
		return fmt.Errorf("EVENT_RETENTION must be positive, got %s", c.EventRetention)
	}
	if _, err := cron.ParseStandard(c.EventPruneSchedule); err != nil {
		return fmt.Errorf("invalid EVENT_PRUNE_SCHEDULE %q: %w", c.EventPruneSchedule, err)
	}
	return nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
