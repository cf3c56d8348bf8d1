// Package config loads dirsentry configuration.
//
// Configuration is applied in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config ($XDG_CONFIG_HOME/dirsentry/config.yaml)
//  3. Watch-root config (.dirsentry.yaml in the watched directory)
//  4. Environment variables (DIRSENTRY_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dirsentry/dirsentry/internal/classify"
)

// Config is the complete dirsentry configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Watch    WatchConfig    `yaml:"watch"`
	Resolver ResolverConfig `yaml:"resolver"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LoggingConfig  `yaml:"logging"`
	History  HistoryConfig  `yaml:"history"`
}

// WatchConfig configures the notifier and the squelch policy.
type WatchConfig struct {
	// Placeholder is the directory name excluded from create/remove
	// reporting. Empty disables squelching entirely.
	Placeholder string `yaml:"placeholder"`

	// PollInterval is the polling backend's scan interval (duration string).
	PollInterval string `yaml:"poll_interval"`

	// ForcePolling skips fsnotify and always polls.
	ForcePolling bool `yaml:"force_polling"`

	// EventBufferSize is the raw event channel buffer.
	EventBufferSize int `yaml:"event_buffer_size"`
}

// ResolverConfig bounds the move-resolution scan.
type ResolverConfig struct {
	// MaxDepth limits scan depth below the watch root. 0 means unbounded.
	MaxDepth int `yaml:"max_depth"`

	// NoFollowSymlinks disables descending through directory symlinks.
	NoFollowSymlinks bool `yaml:"no_follow_symlinks"`
}

// ReportConfig selects event sinks.
type ReportConfig struct {
	// Quiet suppresses the console sink.
	Quiet bool `yaml:"quiet"`

	// FilePath is an optional append-only event log. Empty disables it.
	FilePath string `yaml:"file_path"`

	// SQLitePath is an optional audit database. Empty disables it.
	SQLitePath string `yaml:"sqlite_path"`

	// UTCOffsetHours fixes the timestamp zone for rendered events.
	// The historical default is -5 (US-Eastern standard time).
	UTCOffsetHours int `yaml:"utc_offset_hours"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	// Level is the minimum slog level (debug, info, warn, error).
	Level string `yaml:"level"`

	// FilePath overrides the default diagnostic log location.
	FilePath string `yaml:"file_path"`
}

// HistoryConfig sizes the in-memory recent-event record.
type HistoryConfig struct {
	// Capacity is the number of recent events kept for the summary.
	Capacity int `yaml:"capacity"`
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Watch: WatchConfig{
			Placeholder:     classify.DefaultPlaceholder,
			PollInterval:    "1s",
			ForcePolling:    false,
			EventBufferSize: 256,
		},
		Resolver: ResolverConfig{
			MaxDepth:         0,
			NoFollowSymlinks: false,
		},
		Report: ReportConfig{
			Quiet:          false,
			FilePath:       "",
			SQLitePath:     "",
			UTCOffsetHours: -5,
		},
		Logging: LoggingConfig{
			Level:    "info",
			FilePath: "",
		},
		History: HistoryConfig{
			Capacity: 128,
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file,
// following the XDG Base Directory specification.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dirsentry", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "dirsentry", "config.yaml")
	}
	return filepath.Join(home, ".config", "dirsentry", "config.yaml")
}

// loadUserConfig loads the user/global configuration if it exists.
// A missing file is not an error.
func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load loads configuration for watching dir, applying the precedence chain
// and validating the result.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads .dirsentry.yaml or .dirsentry.yml from dir, if present.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".dirsentry.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".dirsentry.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
// Boolean options are one-way switches: a file can enable them, only a later
// layer can leave them enabled.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Watch.Placeholder != "" {
		c.Watch.Placeholder = other.Watch.Placeholder
	}
	if other.Watch.PollInterval != "" {
		c.Watch.PollInterval = other.Watch.PollInterval
	}
	if other.Watch.ForcePolling {
		c.Watch.ForcePolling = true
	}
	if other.Watch.EventBufferSize != 0 {
		c.Watch.EventBufferSize = other.Watch.EventBufferSize
	}

	if other.Resolver.MaxDepth != 0 {
		c.Resolver.MaxDepth = other.Resolver.MaxDepth
	}
	if other.Resolver.NoFollowSymlinks {
		c.Resolver.NoFollowSymlinks = true
	}

	if other.Report.Quiet {
		c.Report.Quiet = true
	}
	if other.Report.FilePath != "" {
		c.Report.FilePath = other.Report.FilePath
	}
	if other.Report.SQLitePath != "" {
		c.Report.SQLitePath = other.Report.SQLitePath
	}
	if other.Report.UTCOffsetHours != 0 {
		c.Report.UTCOffsetHours = other.Report.UTCOffsetHours
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}

	if other.History.Capacity != 0 {
		c.History.Capacity = other.History.Capacity
	}
}

// applyEnvOverrides applies DIRSENTRY_* environment variables, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DIRSENTRY_PLACEHOLDER"); v != "" {
		c.Watch.Placeholder = v
	}
	if v, ok := os.LookupEnv("DIRSENTRY_NO_PLACEHOLDER"); ok && isTruthy(v) {
		c.Watch.Placeholder = ""
	}
	if v := os.Getenv("DIRSENTRY_POLL_INTERVAL"); v != "" {
		c.Watch.PollInterval = v
	}
	if v := os.Getenv("DIRSENTRY_FORCE_POLLING"); v != "" {
		c.Watch.ForcePolling = isTruthy(v)
	}
	if v := os.Getenv("DIRSENTRY_MAX_DEPTH"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d >= 0 {
			c.Resolver.MaxDepth = d
		}
	}
	if v := os.Getenv("DIRSENTRY_UTC_OFFSET"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			c.Report.UTCOffsetHours = h
		}
	}
	if v := os.Getenv("DIRSENTRY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DIRSENTRY_EVENT_LOG"); v != "" {
		c.Report.FilePath = v
	}
	if v := os.Getenv("DIRSENTRY_SQLITE"); v != "" {
		c.Report.SQLitePath = v
	}
}

func isTruthy(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

// PollInterval parses the configured poll interval.
func (c *Config) PollInterval() (time.Duration, error) {
	return time.ParseDuration(c.Watch.PollInterval)
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if d, err := c.PollInterval(); err != nil {
		return fmt.Errorf("watch.poll_interval is not a duration: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("watch.poll_interval must be positive, got %s", d)
	}

	if c.Watch.EventBufferSize < 1 {
		return fmt.Errorf("watch.event_buffer_size must be at least 1, got %d", c.Watch.EventBufferSize)
	}

	if c.Resolver.MaxDepth < 0 {
		return fmt.Errorf("resolver.max_depth must be non-negative, got %d", c.Resolver.MaxDepth)
	}

	if c.Report.UTCOffsetHours < -12 || c.Report.UTCOffsetHours > 14 {
		return fmt.Errorf("report.utc_offset_hours must be within [-12, 14], got %d", c.Report.UTCOffsetHours)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	if c.History.Capacity < 1 {
		return fmt.Errorf("history.capacity must be at least 1, got %d", c.History.Capacity)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
