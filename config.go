package foreman

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds world tuning loaded from a TOML file.
type Config struct {
	Pools   PoolsConfig   `toml:"pools"`
	Ops     OpsConfig     `toml:"ops"`
	Logging LoggingConfig `toml:"logging"`
}

type PoolsConfig struct {
	DefaultCapacity int            `toml:"default_capacity"`
	Schemas         map[string]int `toml:"schemas"` // per-schema overrides by name
}

type OpsConfig struct {
	PoolCapacity int `toml:"pool_capacity"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// LoadConfig reads and parses a TOML tuning file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Pools: PoolsConfig{
			DefaultCapacity: DefaultPoolCapacity,
		},
		Ops: OpsConfig{
			PoolCapacity: DefaultOpPoolCapacity,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// NewLogger builds a zap logger from the logging section.
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
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
