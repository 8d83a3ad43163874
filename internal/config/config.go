package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/plus3/computecs/compute/driver/host"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Device   DeviceConfig   `toml:"device"`
	Registry RegistryConfig `toml:"registry"`
	Logging  LoggingConfig  `toml:"logging"`
	Demo     DemoConfig     `toml:"demo"`
}

type DeviceConfig struct {
	Index    int    `toml:"index"`
	Name     string `toml:"name"`
	MemoryMB int64  `toml:"memory_mb"`
}

type RegistryConfig struct {
	Capacity int `toml:"capacity"` // slots per component type
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DemoConfig struct {
	Entities   int           `toml:"entities"`
	Iterations int           `toml:"iterations"`
	TickRate   time.Duration `toml:"tick_rate"`
	Speed      float32       `toml:"speed"`
}

// Load reads path over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Index:    0,
			Name:     "Host Compute Device",
			MemoryMB: host.DefaultGlobalMemSize >> 20,
		},
		Registry: RegistryConfig{
			Capacity: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Demo: DemoConfig{
			Entities:   1,
			Iterations: 4,
			TickRate:   50 * time.Millisecond,
			Speed:      1,
		},
	}
}

func (c *Config) validate() error {
	if c.Device.Index < 0 {
		return fmt.Errorf("device.index must not be negative, got %d", c.Device.Index)
	}
	if c.Device.MemoryMB <= 0 {
		return fmt.Errorf("device.memory_mb must be positive, got %d", c.Device.MemoryMB)
	}
	if c.Registry.Capacity <= 0 {
		return fmt.Errorf("registry.capacity must be positive, got %d", c.Registry.Capacity)
	}
	if c.Demo.Entities < 0 || c.Demo.Iterations < 0 {
		return fmt.Errorf("demo.entities and demo.iterations must not be negative")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// HostOptions configures the software driver with the device section.
// Devices before Index are exposed with default settings.
func (c *Config) HostOptions(log *zap.Logger) host.Options {
	devices := make([]host.DeviceSpec, c.Device.Index+1)
	for i := range devices {
		devices[i] = host.DeviceSpec{Name: fmt.Sprintf("Host Compute Device %d", i)}
	}
	devices[c.Device.Index] = host.DeviceSpec{
		Name:          c.Device.Name,
		GlobalMemSize: c.Device.MemoryMB << 20,
	}
	return host.Options{Devices: devices, Logger: log}
}

func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
