// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from CAMPUS_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env        string `env:"CAMPUS_ENV" envDefault:"development"`
	ServerHost string `env:"CAMPUS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"CAMPUS_SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"CAMPUS_LOG_LEVEL" envDefault:"info"`

	// Storage
	Store  string `env:"CAMPUS_STORE" envDefault:"memory"` // memory or sqlite
	DBPath string `env:"CAMPUS_DB_PATH" envDefault:"./data/campus.db"`

	SessionSecret string `env:"CAMPUS_SESSION_SECRET,required"`

	// Seeding
	Seed        bool   `env:"CAMPUS_SEED" envDefault:"true"` // Insert the catalog into an empty store
	CatalogFile string `env:"CAMPUS_CATALOG_FILE"`           // Optional YAML catalog replacing the built-in one

	// Cache configuration
	RedisURL    string        `env:"CAMPUS_REDIS_URL"`                        // Optional Redis URL for distributed caching
	CachePrefix string        `env:"CAMPUS_CACHE_PREFIX" envDefault:"campus:"` // Redis key prefix
	CacheTTL    time.Duration `env:"CAMPUS_CACHE_TTL" envDefault:"5m"`

	// Past-event closing is opt-in; seeded isPast flags are otherwise left as loaded.
	AutoClosePast      bool   `env:"CAMPUS_AUTO_CLOSE_PAST" envDefault:"false"`
	PastEventsSchedule string `env:"CAMPUS_PAST_EVENTS_SCHEDULE" envDefault:"@hourly"`

	// Requests per minute per client IP on login and sign-up.
	AuthRateLimit int `env:"CAMPUS_AUTH_RATE_LIMIT" envDefault:"10"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseSQLite returns true if events and users persist in SQLite.
func (c Config) UseSQLite() bool {
	return c.Store == StoreSQLite
}

// SlogLevel maps LogLevel to a slog level. Unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
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

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CAMPUS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("CAMPUS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("CAMPUS_SESSION_SECRET is a known default value and must not be used")
		}
	}

	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("CAMPUS_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.Store)
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("CAMPUS_SERVER_PORT out of range: %d", c.ServerPort)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CAMPUS_CACHE_TTL must not be negative")
	}
	if c.AuthRateLimit < 1 {
		return fmt.Errorf("CAMPUS_AUTH_RATE_LIMIT must be positive, got %d", c.AuthRateLimit)
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes.
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
