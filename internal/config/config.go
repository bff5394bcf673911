package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultFluidTemperature is the design temperature for pipe sizing, °C.
	DefaultFluidTemperature = 20.0

	// DefaultEngineCommand is the borefield design executable.
	DefaultEngineCommand = "ghedesigner"
)

// Engine modes.
const (
	EngineModeCommand = "command"
	EngineModeHTTP    = "http"
)

// Config holds all runtime configuration for thermalnetwork.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Sizing  SizingConfig  `mapstructure:"sizing"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Pipe    PipeConfig    `mapstructure:"pipe"`
	API     APIConfig     `mapstructure:"api"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`        // optional rotating log file
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotation threshold
	MaxBackups int    `mapstructure:"max_backups"`
}

// SizingConfig bounds the sizing run.
type SizingConfig struct {
	Workers int `mapstructure:"workers"` // concurrent GHE sizing calls
}

// EngineConfig selects and configures the borefield design engine.
type EngineConfig struct {
	Mode    string        `mapstructure:"mode"`
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 means no limit
}

// PipeConfig holds hydraulic sizing settings.
type PipeConfig struct {
	FluidTemperature float64 `mapstructure:"fluid_temperature"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"` // empty = no auth
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)

	v.SetDefault("sizing.workers", runtime.GOMAXPROCS(0))

	v.SetDefault("engine.mode", EngineModeCommand)
	v.SetDefault("engine.command", DefaultEngineCommand)
	v.SetDefault("engine.args", []string{})
	v.SetDefault("engine.base_url", "http://localhost:8000")
	v.SetDefault("engine.timeout", time.Duration(0))

	v.SetDefault("pipe.fluid_temperature", DefaultFluidTemperature)

	v.SetDefault("api.listen_addr", "127.0.0.1:8080")
	v.SetDefault("api.auth_token", "")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".thermalnetwork"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("THERMALNETWORK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json; got %q", c.Logging.Format)
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging.max_size_mb must be greater than 0")
	}
	if c.Logging.MaxBackups < 0 {
		return fmt.Errorf("logging.max_backups must be >= 0")
	}
	if c.Sizing.Workers <= 0 {
		return fmt.Errorf("sizing.workers must be greater than 0")
	}
	switch c.Engine.Mode {
	case EngineModeCommand:
		if c.Engine.Command == "" {
			return fmt.Errorf("engine.command must not be empty in command mode")
		}
	case EngineModeHTTP:
		if c.Engine.BaseURL == "" {
			return fmt.Errorf("engine.base_url must not be empty in http mode")
		}
	default:
		return fmt.Errorf("engine.mode must be %s or %s; got %q", EngineModeCommand, EngineModeHTTP, c.Engine.Mode)
	}
	if c.Engine.Timeout < 0 {
		return fmt.Errorf("engine.timeout must be >= 0")
	}
	if c.Pipe.FluidTemperature < -20 || c.Pipe.FluidTemperature > 100 {
		return fmt.Errorf("pipe.fluid_temperature must be between -20 and 100 °C")
	}
	if c.API.ListenAddr == "" {
		return fmt.Errorf("api.listen_addr must not be empty")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
