// Package config handles loading and saving formulary configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/formulary/config.yaml
//   - Data:    ~/.local/share/formulary/ (the default document store)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	// WindowThreshold is the item count above which the formula list
	// switches to windowed rendering (default 50).
	WindowThreshold int `yaml:"window_threshold,omitempty"`
	// BufferRows is the windowed list buffer above and below the viewport.
	BufferRows int  `yaml:"buffer_rows,omitempty"`
	Headless   bool `yaml:"headless,omitempty"` // Compact header mode
}

// AutosaveConfig tunes the binding layer's save scheduling.
type AutosaveConfig struct {
	DebounceSeconds int `yaml:"debounce_seconds,omitempty"` // default 1
	IntervalSeconds int `yaml:"interval_seconds,omitempty"` // default 60
}

// Config is the top-level configuration for formulary.
type Config struct {
	// StorageKind selects the default storage variant: kv or file. Host
	// storage carries injected commands and is wired programmatically
	// (binding.NewHostStorage), not through configuration.
	StorageKind string `yaml:"storage_kind,omitempty"`
	// FormulaPath and TemplatePath remember the last bound file locations.
	FormulaPath  string         `yaml:"formula_path,omitempty"`
	TemplatePath string         `yaml:"template_path,omitempty"`
	UI           UIConfig       `yaml:"ui,omitempty"`
	Autosave     AutosaveConfig `yaml:"autosave,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		StorageKind: "kv",
		UI: UIConfig{
			WindowThreshold: 50,
			BufferRows:      5,
		},
		Autosave: AutosaveConfig{
			DebounceSeconds: 1,
			IntervalSeconds: 60,
		},
	}
}

// DebounceDelay returns the autosave debounce as a duration.
func (c Config) DebounceDelay() time.Duration {
	if c.Autosave.DebounceSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.Autosave.DebounceSeconds) * time.Second
}

// SaveInterval returns the periodic autosave cadence as a duration.
func (c Config) SaveInterval() time.Duration {
	if c.Autosave.IntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Autosave.IntervalSeconds) * time.Second
}

// ConfigDir returns the XDG config directory for formulary.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "formulary")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "formulary")
}

// DataDir returns the XDG data directory for formulary.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "formulary")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "formulary")
}

// StorePath returns the default document store location.
func StorePath() string {
	dir := DataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "formulary.db")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.UI.WindowThreshold <= 0 {
		cfg.UI.WindowThreshold = 50
	}
	if cfg.UI.BufferRows <= 0 {
		cfg.UI.BufferRows = 5
	}
	cfg.FormulaPath = expandHome(cfg.FormulaPath)
	cfg.TemplatePath = expandHome(cfg.TemplatePath)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
