// Package config loads tmux-bridge configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (TMUX_BRIDGE_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .tmux-bridge.yaml in current directory
//  2. ~/.config/tmux-bridge/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tmux-bridge configuration.
type Config struct {
	// Command synchronization settings
	DefaultTimeout string `yaml:"default_timeout"` // Go duration string, e.g. "30s"
	PollInterval   string `yaml:"poll_interval"`   // Go duration string, e.g. "500ms"

	// Transport settings
	TmuxBin string `yaml:"tmux_bin"` // tmux binary path (default: "tmux" via PATH)

	// Command history (JSONL); empty disables recording
	HistoryFile string `yaml:"history_file"`

	// Watch mode refresh
	WatchRefresh string `yaml:"watch_refresh"` // Go duration string, e.g. "1s"

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	Timeout         time.Duration `yaml:"-"`
	Poll            time.Duration `yaml:"-"`
	WatchRefreshDur time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		DefaultTimeout: "30s",
		PollInterval:   "500ms",
		TmuxBin:        "tmux",
		WatchRefresh:   "1s",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	// Try to load config file
	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	// Environment variables override everything
	mergeEnv(cfg)

	// Parse durations
	var err error
	cfg.Timeout, err = time.ParseDuration(cfg.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid default_timeout %q: %w", cfg.DefaultTimeout, err)
	}
	cfg.Poll, err = time.ParseDuration(cfg.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid poll_interval %q: %w", cfg.PollInterval, err)
	}
	cfg.WatchRefreshDur, err = time.ParseDuration(cfg.WatchRefresh)
	if err != nil {
		return nil, fmt.Errorf("invalid watch_refresh %q: %w", cfg.WatchRefresh, err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".tmux-bridge.yaml"); err == nil {
		return ".tmux-bridge.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "tmux-bridge", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.DefaultTimeout != "" {
		cfg.DefaultTimeout = file.DefaultTimeout
	}
	if file.PollInterval != "" {
		cfg.PollInterval = file.PollInterval
	}
	if file.TmuxBin != "" {
		cfg.TmuxBin = file.TmuxBin
	}
	if file.HistoryFile != "" {
		cfg.HistoryFile = file.HistoryFile
	}
	if file.WatchRefresh != "" {
		cfg.WatchRefresh = file.WatchRefresh
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("TMUX_BRIDGE_TIMEOUT"); v != "" {
		cfg.DefaultTimeout = v
	}
	if v := os.Getenv("TMUX_BRIDGE_POLL_INTERVAL"); v != "" {
		cfg.PollInterval = v
	}
	if v := os.Getenv("TMUX_BRIDGE_TMUX_BIN"); v != "" {
		cfg.TmuxBin = v
	}
	if v := os.Getenv("TMUX_BRIDGE_HISTORY_FILE"); v != "" {
		cfg.HistoryFile = v
	}
	if v := os.Getenv("TMUX_BRIDGE_WATCH_REFRESH"); v != "" {
		cfg.WatchRefresh = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}
