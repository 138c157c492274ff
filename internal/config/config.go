// Package config loads the tidecast TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Defaults for the layout and worker knobs.
const (
	DefaultDetailsThreshold  = 135
	DefaultBigScrollDivisor  = 4
	DefaultSimultaneousLimit = 3
	DefaultPlayer            = "mpv"
)

// Colors holds the optional theme overrides, as names or #rrggbb strings.
type Colors struct {
	Foreground  string `toml:"foreground"`
	Background  string `toml:"background"`
	HighlightFg string `toml:"highlight_fg"`
	HighlightBg string `toml:"highlight_bg"`
	Error       string `toml:"error"`
}

// Config is the parsed configuration file plus derived paths.
type Config struct {
	// DownloadDir is where episode files land.
	DownloadDir string `toml:"download_dir"`

	// DetailsThreshold is the terminal width above which the details
	// panel is shown.
	DetailsThreshold int `toml:"details_threshold"`

	// BigScrollDivisor divides the terminal height to size a "big" jump.
	BigScrollDivisor int `toml:"big_scroll_divisor"`

	// SimultaneousLimit bounds concurrent sync and download workers.
	SimultaneousLimit int `toml:"simultaneous_limit"`

	// Player is the external command used for playback.
	Player string `toml:"player"`

	Keybindings map[string][]string `toml:"keybindings"`
	Colors      Colors              `toml:"colors"`
}

func defaultConfig() Config {
	return Config{
		DetailsThreshold:  DefaultDetailsThreshold,
		BigScrollDivisor:  DefaultBigScrollDivisor,
		SimultaneousLimit: DefaultSimultaneousLimit,
		Player:            DefaultPlayer,
	}
}

// Load parses the config file at path, falling back to defaults when the
// file does not exist. An unreadable or malformed file is an error.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.DownloadDir = defaultDownloadDir()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DownloadDir == "" {
		cfg.DownloadDir = defaultDownloadDir()
	}
	if cfg.DetailsThreshold <= 0 {
		cfg.DetailsThreshold = DefaultDetailsThreshold
	}
	if cfg.BigScrollDivisor <= 0 {
		cfg.BigScrollDivisor = DefaultBigScrollDivisor
	}
	if cfg.SimultaneousLimit <= 0 {
		cfg.SimultaneousLimit = DefaultSimultaneousLimit
	}
	if cfg.Player == "" {
		cfg.Player = DefaultPlayer
	}

	return cfg, nil
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "tidecast", "config.toml")
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "podcasts"
	}
	return filepath.Join(home, "Podcasts")
}
