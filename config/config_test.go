package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 115200, cfg.BaudRate)
	assert.Equal(t, StoreKindFile, cfg.StoreKind)
	assert.Equal(t, "spin360.eeprom", cfg.StorePath)
	assert.Equal(t, 4096, cfg.StoreSize)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERIAL_PORT", "/dev/ttyACM0")
	t.Setenv("STORE_KIND", "remote")
	t.Setenv("STORE_ADDR", "http://localhost:8080")
	t.Setenv("STORE_TIMEOUT", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort)
	assert.Equal(t, StoreKindRemote, cfg.StoreKind)
	assert.Equal(t, "http://localhost:8080", cfg.StoreAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
}

func TestValidate(t *testing.T) {
	valid := Config{StoreKind: StoreKindFile, StorePath: "x", StoreSize: 16}

	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"Valid", func(*Config) {}, true},
		{"Memory", func(c *Config) { c.StoreKind = StoreKindMemory }, true},
		{"MissingPath", func(c *Config) { c.StorePath = "" }, false},
		{"MissingAddr", func(c *Config) { c.StoreKind = StoreKindRemote }, false},
		{"UnknownKind", func(c *Config) { c.StoreKind = "flash" }, false},
		{"ZeroSize", func(c *Config) { c.StoreSize = 0 }, false},
		{"TooLarge", func(c *Config) { c.StoreSize = 1<<16 + 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&Config{LogLevel: "debug", LogFormat: "json"})
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	logger = SetupLogger(&Config{LogLevel: "warn"})
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
}
