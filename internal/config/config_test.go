package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/computecs/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "computecs.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 1024, cfg.Registry.Capacity)
	assert.Equal(t, int64(256), cfg.Device.MemoryMB)
	assert.Equal(t, 4, cfg.Demo.Iterations)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[registry]
capacity = 64

[logging]
level = "debug"
format = "json"

[demo]
entities = 10
tick_rate = "16ms"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Registry.Capacity)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Demo.Entities)
	assert.Equal(t, 16*time.Millisecond, cfg.Demo.TickRate)

	// untouched keys keep their defaults
	assert.Equal(t, 4, cfg.Demo.Iterations)
	assert.Equal(t, "Host Compute Device", cfg.Device.Name)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = config.Load(writeConfig(t, "[registry\ncapacity = 1"))
	assert.ErrorContains(t, err, "parse config")

	_, err = config.Load(writeConfig(t, "[registry]\ncapacity = 0"))
	assert.ErrorContains(t, err, "registry.capacity")

	_, err = config.Load(writeConfig(t, "[logging]\nformat = \"xml\""))
	assert.ErrorContains(t, err, "logging.format")
}

func TestHostOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Device.Index = 1
	cfg.Device.Name = "small"
	cfg.Device.MemoryMB = 1

	opts := cfg.HostOptions(nil)
	require.Len(t, opts.Devices, 2)
	assert.Equal(t, "small", opts.Devices[1].Name)
	assert.Equal(t, int64(1<<20), opts.Devices[1].GlobalMemSize)
	assert.Zero(t, opts.Devices[0].GlobalMemSize)
}

func TestNewLogger(t *testing.T) {
	log, err := config.NewLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = config.NewLogger(config.LoggingConfig{Level: "nonsense", Format: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
