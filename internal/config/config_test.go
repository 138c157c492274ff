package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error: %v", err)
	}

	if cfg.DetailsThreshold != DefaultDetailsThreshold {
		t.Errorf("Expected default details threshold, got %d", cfg.DetailsThreshold)
	}
	if cfg.BigScrollDivisor != DefaultBigScrollDivisor {
		t.Errorf("Expected default big scroll divisor, got %d", cfg.BigScrollDivisor)
	}
	if cfg.SimultaneousLimit != DefaultSimultaneousLimit {
		t.Errorf("Expected default simultaneous limit, got %d", cfg.SimultaneousLimit)
	}
	if cfg.DownloadDir == "" {
		t.Error("Expected a default download dir")
	}
	if cfg.Player != DefaultPlayer {
		t.Errorf("Expected default player, got %q", cfg.Player)
	}
}

func TestLoad_FullFile(t *testing.T) {
	content := `
download_dir = "/tmp/pods"
details_threshold = 100
big_scroll_divisor = 2
simultaneous_limit = 5
player = "vlc"

[keybindings]
quit = ["Q"]

[colors]
foreground = "#c0caf5"
error = "red"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DownloadDir != "/tmp/pods" {
		t.Errorf("Expected download dir '/tmp/pods', got %q", cfg.DownloadDir)
	}
	if cfg.DetailsThreshold != 100 {
		t.Errorf("Expected details threshold 100, got %d", cfg.DetailsThreshold)
	}
	if cfg.BigScrollDivisor != 2 {
		t.Errorf("Expected big scroll divisor 2, got %d", cfg.BigScrollDivisor)
	}
	if cfg.SimultaneousLimit != 5 {
		t.Errorf("Expected simultaneous limit 5, got %d", cfg.SimultaneousLimit)
	}
	if cfg.Player != "vlc" {
		t.Errorf("Expected player 'vlc', got %q", cfg.Player)
	}
	if keys := cfg.Keybindings["quit"]; len(keys) != 1 || keys[0] != "Q" {
		t.Errorf("Expected quit bound to Q, got %v", keys)
	}
	if cfg.Colors.Foreground != "#c0caf5" || cfg.Colors.Error != "red" {
		t.Errorf("Expected color overrides, got %+v", cfg.Colors)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`details_threshold = 90`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DetailsThreshold != 90 {
		t.Errorf("Expected details threshold 90, got %d", cfg.DetailsThreshold)
	}
	// unset knobs fall back to defaults
	if cfg.BigScrollDivisor != DefaultBigScrollDivisor {
		t.Errorf("Expected default big scroll divisor, got %d", cfg.BigScrollDivisor)
	}
	if cfg.DownloadDir == "" {
		t.Error("Expected a default download dir")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`details_threshold = [`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed config")
	}
}
