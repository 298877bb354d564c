// Package config loads host-side settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store kinds accepted in STORE_KIND
const (
	StoreKindFile   = "file"
	StoreKindRemote = "remote"
	StoreKindMemory = "memory"
)

// Config holds all host configuration
type Config struct {
	// Serial connection to the rig
	SerialPort string `envconfig:"SERIAL_PORT"`
	BaudRate   int    `envconfig:"BAUD_RATE" default:"115200"`

	// Where params are persisted when working offline
	StoreKind    string        `envconfig:"STORE_KIND" default:"file"`
	StorePath    string        `envconfig:"STORE_PATH" default:"spin360.eeprom"`
	StoreSize    int           `envconfig:"STORE_SIZE" default:"4096"`
	StoreAddr    string        `envconfig:"STORE_ADDR"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	CatalogPath string `envconfig:"CATALOG_PATH"`

	// Logging settings
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads configuration from .env and environment variables
func Load() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "error", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the settings are consistent
func (c *Config) Validate() error {
	switch c.StoreKind {
	case StoreKindFile:
		if c.StorePath == "" {
			return fmt.Errorf("STORE_PATH is required for store kind %q", c.StoreKind)
		}
	case StoreKindRemote:
		if c.StoreAddr == "" {
			return fmt.Errorf("STORE_ADDR is required for store kind %q", c.StoreKind)
		}
	case StoreKindMemory:
	default:
		return fmt.Errorf("unknown store kind %q", c.StoreKind)
	}

	if c.StoreSize <= 0 || c.StoreSize > 1<<16 {
		return fmt.Errorf("STORE_SIZE must be in (0, 65536], got %d", c.StoreSize)
	}

	return nil
}

// SetupLogger configures structured logging and sets it as the default
func SetupLogger(cfg *Config) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
