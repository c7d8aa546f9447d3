// Package config loads bcv settings: defaults, then an optional YAML file,
// then environment overrides. Command-line flags are applied by the caller
// on top of the result before Validate.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Environment variables read by Load.
const (
	EnvConfig  = "BIKECARD_CONFIG"
	EnvFeed    = "BIKECARD_FEED"
	EnvNames   = "BIKECARD_NAMES"
	EnvLog     = "BIKECARD_LOG"
	EnvRefresh = "BIKECARD_REFRESH"
)

// Config is the complete bcv configuration.
type Config struct {
	// Feed is the telemetry feed file. Empty means auto-discover.
	Feed string `yaml:"feed"`

	// Names is the names database path, or ":memory:". Empty means next
	// to the feed.
	Names string `yaml:"names"`

	// Refresh is the polling fallback interval for re-reading the feed.
	Refresh Duration `yaml:"refresh"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// LogConfig controls the rotated log file.
type LogConfig struct {
	File       string `yaml:"file"` // empty disables logging
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// ServerConfig holds settings for --serve mode.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"readTimeout"`
	WriteTimeout Duration `yaml:"writeTimeout"`
}

// Duration is a time.Duration that reads from YAML as "2s", "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Refresh: Duration(2 * time.Second),
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			ReadTimeout:  Duration(5 * time.Second),
			WriteTimeout: Duration(5 * time.Second),
		},
	}
}

// Load builds a configuration from defaults, the YAML file at path (or
// $BIKECARD_CONFIG when path is empty) and environment overrides. A missing
// file is an error only when one was named explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvFeed); v != "" {
		cfg.Feed = v
	}
	if v := os.Getenv(EnvNames); v != "" {
		cfg.Names = v
	}
	if v := os.Getenv(EnvLog); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv(EnvRefresh); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvRefresh, v, err)
		}
		cfg.Refresh = Duration(d)
	}
	return nil
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for values bcv cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Refresh.Std() <= 0 {
		errs = append(errs, fmt.Errorf("refresh must be positive, got %s", c.Refresh.Std()))
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, errors.New("log rotation limits must not be negative"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	return errors.Join(errs...)
}
