// Package config loads the timeline configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/timeline/internal/log"
	"github.com/fentz26/timeline/internal/timeline"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen = "127.0.0.1:7477"
	DefaultAPI    = "http://127.0.0.1:7477"
)

// Config holds timeline settings.
type Config struct {
	// Listen is the HTTP API listen address for `timeline serve`.
	Listen string `yaml:"listen"`
	// API is the base URL the CLI and TUI talk to in remote mode.
	API string `yaml:"api"`
	// ItemsFile seeds the store at startup (.yaml, .json or .ics).
	ItemsFile string `yaml:"items_file"`

	Layout LayoutConfig `yaml:"layout"`
	Log    LogConfig    `yaml:"log"`
	Cache  CacheConfig  `yaml:"cache"`
	Import ImportConfig `yaml:"import"`
}

// LayoutConfig controls lane packing and the initial zoom.
type LayoutConfig struct {
	Strict bool    `yaml:"strict"`
	Zoom   float64 `yaml:"zoom"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
	// File receives log output while the TUI owns the terminal.
	File string `yaml:"file"`
}

// CacheConfig controls the layout cache. An empty RedisURL keeps it in process.
type CacheConfig struct {
	RedisURL   string `yaml:"redis_url"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// ImportConfig bounds calendar imports.
type ImportConfig struct {
	// HorizonDays limits recurring event expansion past the first occurrence.
	HorizonDays int `yaml:"horizon_days"`
	// MaxOccurrences caps expanded occurrences per recurring event.
	MaxOccurrences int `yaml:"max_occurrences"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen: DefaultListen,
		API:    DefaultAPI,
		Layout: LayoutConfig{Zoom: 1},
		Log:    LogConfig{Level: "info"},
		Cache:  CacheConfig{TTLSeconds: 300},
		Import: ImportConfig{HorizonDays: 365, MaxOccurrences: 100},
	}
}

// CacheTTL returns the layout cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// LoadConfig loads configuration from a YAML file. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// HomePath returns ~/.timeline/config.yaml.
func HomePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, ".timeline", "config.yaml"), nil
}

// LoadConfigFromHome loads configuration from ~/.timeline/config.yaml.
func LoadConfigFromHome() (*Config, error) {
	path, err := HomePath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// SaveConfig saves configuration to a YAML file, creating parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen must not be empty")
	}
	if c.Layout.Zoom < timeline.MinZoom || c.Layout.Zoom > timeline.MaxZoom {
		return fmt.Errorf("layout.zoom %v out of range [%v, %v]", c.Layout.Zoom, timeline.MinZoom, timeline.MaxZoom)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must not be negative")
	}
	if c.Import.HorizonDays < 1 {
		return fmt.Errorf("import.horizon_days must be at least 1")
	}
	if c.Import.MaxOccurrences < 1 {
		return fmt.Errorf("import.max_occurrences must be at least 1")
	}
	return nil
}
