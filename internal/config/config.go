// Package config loads server settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = "8000"
	defaultLogLevel        = "info"
	defaultEnvironment     = "production"
	defaultBodyLimit       = "20M"
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds everything cmd/main.go needs to start the server
type Config struct {
	Host            string
	Port            string
	LogLevel        zapcore.Level
	Environment     string
	BodyLimit       string
	MaxPixels       int
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults
func FromEnv() (*Config, error) {
	cfg := &Config{
		Host:            getEnv("FRAMEGATE_HOST", defaultHost),
		Port:            getEnv("PORT", defaultPort),
		Environment:     getEnv("FRAMEGATE_ENV", defaultEnvironment),
		BodyLimit:       getEnv("FRAMEGATE_BODY_LIMIT", defaultBodyLimit),
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}

	level, err := zapcore.ParseLevel(getEnv("FRAMEGATE_LOG_LEVEL", defaultLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid FRAMEGATE_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	switch cfg.Environment {
	case "production", "development":
	default:
		return nil, fmt.Errorf("invalid FRAMEGATE_ENV %q: want production or development", cfg.Environment)
	}

	// echo's BodyLimit middleware panics on a malformed limit, so reject it here
	if _, err := bytes.Parse(cfg.BodyLimit); err != nil {
		return nil, fmt.Errorf("invalid FRAMEGATE_BODY_LIMIT %q: %w", cfg.BodyLimit, err)
	}

	if v := os.Getenv("FRAMEGATE_MAX_PIXELS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid FRAMEGATE_MAX_PIXELS %q: must be a positive integer", v)
		}
		cfg.MaxPixels = n
	}

	if v := os.Getenv("FRAMEGATE_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FRAMEGATE_SHUTDOWN_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid FRAMEGATE_SHUTDOWN_TIMEOUT %q: must be positive", v)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

// Address is the host:port the server listens on
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewLogger builds a zap logger for the configured environment and level
func (c *Config) NewLogger() (*zap.Logger, error) {
	var zcfg zap.Config
	if c.Environment == "development" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zcfg.Build()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
