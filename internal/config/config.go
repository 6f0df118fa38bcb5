package config

import (
	"encoding/json"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Config represents the main chronotrace configuration
type Config struct {
	// Profile recording
	Profile ProfileConfig `json:"profile" mapstructure:"profile"`

	// Scheduled session rotation
	Rotation RotationConfig `json:"rotation" mapstructure:"rotation"`

	// Viewer server
	Viewer ViewerConfig `json:"viewer" mapstructure:"viewer"`

	// Trace archive
	Archive ArchiveConfig `json:"archive" mapstructure:"archive"`

	// Session lifecycle hooks
	Hooks HooksConfig `json:"hooks" mapstructure:"hooks"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ProfileConfig holds recorder defaults
type ProfileConfig struct {
	Output string `json:"output" mapstructure:"output"` // default trace output path
}

// RotationConfig holds scheduled session rotation settings
type RotationConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Schedule  string `json:"schedule" mapstructure:"schedule"` // cron expression
	OutputDir string `json:"output_dir" mapstructure:"output_dir"`
	Prefix    string `json:"prefix" mapstructure:"prefix"`
}

// ViewerConfig holds viewer server settings
type ViewerConfig struct {
	Host        string `json:"host" mapstructure:"host"`
	Port        int    `json:"port" mapstructure:"port"`
	OpenBrowser bool   `json:"open_browser" mapstructure:"open_browser"`
	DebounceMs  int    `json:"debounce_ms" mapstructure:"debounce_ms"`
}

// ArchiveConfig holds trace archive settings
type ArchiveConfig struct {
	Path string `json:"path" mapstructure:"path"` // sqlite database path, empty means <data_dir>/archive.db
}

// HooksConfig holds session lifecycle hook settings
type HooksConfig struct {
	Enabled bool         `json:"enabled" mapstructure:"enabled"`
	Hooks   []HookConfig `json:"hooks" mapstructure:"hooks"`
}

// HookConfig represents a single lifecycle hook
type HookConfig struct {
	Event   string `json:"event" mapstructure:"event"` // session.begin, session.end
	Command string `json:"command" mapstructure:"command"`
	Timeout int    `json:"timeout" mapstructure:"timeout"` // seconds
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Profile: ProfileConfig{
			Output: "results.json",
		},
		Rotation: RotationConfig{
			Enabled:  false,
			Schedule: "0 * * * *",
			Prefix:   "trace",
		},
		Viewer: ViewerConfig{
			Host:        "127.0.0.1",
			Port:        9230,
			OpenBrowser: false,
			DebounceMs:  250,
		},
		Archive: ArchiveConfig{
			Path: "",
		},
		Hooks: HooksConfig{
			Enabled: false,
			Hooks:   []HookConfig{},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
		DataDir: "",
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate logging level
	if c.Logging.Level != "" {
		validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
		valid := false
		for _, vl := range validLevels {
			if c.Logging.Level == vl {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
		}
	}

	// Validate viewer settings
	if c.Viewer.Port < 1 || c.Viewer.Port > 65535 {
		return fmt.Errorf("viewer port must be between 1 and 65535, got %d", c.Viewer.Port)
	}
	if c.Viewer.DebounceMs < 0 {
		return fmt.Errorf("viewer debounce_ms must not be negative, got %d", c.Viewer.DebounceMs)
	}

	// Validate rotation schedule if enabled
	if c.Rotation.Enabled {
		if c.Rotation.Schedule == "" {
			return fmt.Errorf("rotation schedule is required when rotation is enabled")
		}
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.Rotation.Schedule); err != nil {
			return fmt.Errorf("invalid rotation schedule %q: %w", c.Rotation.Schedule, err)
		}
		if c.Rotation.Prefix == "" {
			return fmt.Errorf("rotation prefix is required when rotation is enabled")
		}
	}

	// Validate hooks
	if c.Hooks.Enabled {
		for i, hook := range c.Hooks.Hooks {
			if hook.Event != "session.begin" && hook.Event != "session.end" {
				return fmt.Errorf("hook %d: invalid event %s (must be: session.begin, session.end)", i, hook.Event)
			}
			if hook.Command == "" {
				return fmt.Errorf("hook %d: command is required", i)
			}
			if hook.Timeout < 0 {
				return fmt.Errorf("hook %d: timeout must not be negative", i)
			}
		}
	}

	return nil
}
