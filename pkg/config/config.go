// Package config handles loading and saving arbor configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/arbor/config.yaml
//   - State:  ~/.local/state/arbor/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// UIConfig holds browser preference settings.
type UIConfig struct {
	Theme          string `yaml:"theme,omitempty"`        // "dark", "light" or "" for auto
	ExpandLevel    int    `yaml:"expand_level,omitempty"` // initial depth to expand (0 = roots collapsed)
	ShowCheckboxes bool   `yaml:"show_checkboxes,omitempty"`
}

// WatchConfig controls the file-change watcher.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled,omitempty"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Config is the top-level configuration for arbor.
type Config struct {
	UI    UIConfig    `yaml:"ui,omitempty"`
	Watch WatchConfig `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			ExpandLevel:    1,
			ShowCheckboxes: true,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 250 * time.Millisecond,
		},
	}
}

// ConfigDir returns the XDG config directory for arbor.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "arbor")
}

// StateDir returns the XDG state directory for arbor.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "arbor")
}

// ConfigPath returns the path of the config file.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file, returning defaults when it does not exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file from an explicit path. A missing file is not
// an error; defaults are returned. Unset fields fall back to defaults too.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cannot read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultConfig().Watch.Debounce
	}
	if cfg.UI.ExpandLevel < 0 {
		cfg.UI.ExpandLevel = 0
	}
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes cfg to an explicit path.
func SaveTo(path string, cfg Config) error {
	if path == "" {
		return fmt.Errorf("no config path available")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	return nil
}
