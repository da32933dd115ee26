// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the CLI.
const (
	EnvStore  = "CVEDIT_STORE"
	EnvConfig = "CVEDIT_CONFIG"
)

const (
	// DefaultAutosaveMS is the autosave debounce window in milliseconds
	DefaultAutosaveMS = 500
	maxAutosaveMS     = 60_000
)

// Config represents the CLI configuration that can be loaded from a JSON or
// YAML file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Paths
	StorePath   string `json:"store_path,omitempty" yaml:"store_path,omitempty"`     // SQLite file holding editor state
	DefaultsDir string `json:"defaults_dir,omitempty" yaml:"defaults_dir,omitempty"` // Directory overriding the built-in cv.json and stylesheets
	Template    string `json:"template,omitempty" yaml:"template,omitempty"`         // Markdown template for the show command
	LogFile     string `json:"log_file,omitempty" yaml:"log_file,omitempty"`         // Log destination while the editor owns the terminal

	// Editing
	DefaultMode string `json:"default_mode,omitempty" yaml:"default_mode,omitempty"` // Mode used when none was persisted
	AutosaveMS  int    `json:"autosave_ms,omitempty" yaml:"autosave_ms,omitempty"`   // Autosave debounce window

	// Behavior
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Debug logging
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by
// extension. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.DefaultMode != "" {
		if _, err := types.ParseMode(c.DefaultMode); err != nil {
			return fmt.Errorf("config error: 'default_mode': %w", err)
		}
	}

	// Validate numeric ranges
	if c.AutosaveMS < 0 || c.AutosaveMS > maxAutosaveMS {
		return fmt.Errorf("config error: 'autosave_ms' must be between 0 and %d", maxAutosaveMS)
	}

	// Validate directories and files exist (if specified)
	if c.DefaultsDir != "" {
		info, err := os.Stat(c.DefaultsDir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("config error: defaults directory not found: %s", c.DefaultsDir)
		}
	}
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.DefaultsDir == "" {
		result.DefaultsDir = defaults.DefaultsDir
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}
	if result.DefaultMode == "" {
		result.DefaultMode = defaults.DefaultMode
	}

	// Int fields: use default if zero
	if result.AutosaveMS == 0 {
		if defaults.AutosaveMS > 0 {
			result.AutosaveMS = defaults.AutosaveMS
		} else {
			result.AutosaveMS = DefaultAutosaveMS
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Mode returns the configured default mode, or script mode.
func (c *Config) Mode() types.Mode {
	if m, err := types.ParseMode(c.DefaultMode); err == nil {
		return m
	}
	return types.ModeScript
}

// AutosaveDelay returns the autosave window as a duration.
func (c *Config) AutosaveDelay() time.Duration {
	if c.AutosaveMS <= 0 {
		return DefaultAutosaveMS * time.Millisecond
	}
	return time.Duration(c.AutosaveMS) * time.Millisecond
}

// DefaultStorePath is where editor state lives when nothing else is set:
// <user config dir>/cvedit/cv.db, or cv.db in the working directory.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cv.db"
	}
	return filepath.Join(dir, "cvedit", "cv.db")
}
