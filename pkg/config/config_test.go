package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	want := DefaultConfig()
	if cfg.StorageKind != want.StorageKind ||
		cfg.UI.WindowThreshold != want.UI.WindowThreshold ||
		cfg.Autosave.DebounceSeconds != want.Autosave.DebounceSeconds {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.StorageKind = "file"
	cfg.FormulaPath = "/data/formulas.json"
	cfg.UI.WindowThreshold = 120
	cfg.Autosave.IntervalSeconds = 30

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.StorageKind != "file" || loaded.FormulaPath != "/data/formulas.json" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.UI.WindowThreshold != 120 || loaded.Autosave.IntervalSeconds != 30 {
		t.Errorf("round trip lost numbers: %+v", loaded)
	}
}

func TestLoadClampsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "ui:\n  window_threshold: -5\n  buffer_rows: 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UI.WindowThreshold != 50 || cfg.UI.BufferRows != 5 {
		t.Errorf("bad values not clamped: %+v", cfg.UI)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("invalid yaml accepted")
	}
}

func TestDurations(t *testing.T) {
	cfg := Config{}
	if cfg.DebounceDelay() != time.Second {
		t.Errorf("zero debounce = %v, want 1s", cfg.DebounceDelay())
	}
	if cfg.SaveInterval() != time.Minute {
		t.Errorf("zero interval = %v, want 1m", cfg.SaveInterval())
	}

	cfg.Autosave = AutosaveConfig{DebounceSeconds: 3, IntervalSeconds: 90}
	if cfg.DebounceDelay() != 3*time.Second || cfg.SaveInterval() != 90*time.Second {
		t.Errorf("configured durations: %v %v", cfg.DebounceDelay(), cfg.SaveInterval())
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/formulas.json"); got != filepath.Join(home, "formulas.json") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path modified: %q", got)
	}
}
