// Package config loads application settings from an optional YAML file and
// DIAGNOTE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	// DataDir holds the SQLite database and scratch files for the external
	// editor. Defaults to ~/.config/diagnote.
	DataDir string `mapstructure:"data_dir"`
	// Timezone names the IANA zone used for history labels.
	Timezone string `mapstructure:"timezone"`
	// Author is recorded on history entries pushed from this machine.
	Author string `mapstructure:"author"`
	// Editor is the command used to edit history entries; falls back to
	// $EDITOR, then nvim.
	Editor  string        `mapstructure:"editor"`
	Image   ImageConfig   `mapstructure:"image"`
	Export  ExportConfig  `mapstructure:"export"`
	Watcher WatcherConfig `mapstructure:"watcher"`
}

type ImageConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type ExportConfig struct {
	// Enabled starts the cron scheduler for scheduled export targets.
	Enabled bool `mapstructure:"enabled"`
}

type WatcherConfig struct {
	IntervalMs int `mapstructure:"interval_ms"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		DataDir:  Dir(),
		Timezone: "Asia/Tokyo",
		Image:    ImageConfig{TimeoutSeconds: 15},
		Export:   ExportConfig{Enabled: true},
		Watcher:  WatcherConfig{IntervalMs: 2000},
	}
}

// Dir returns the configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".diagnote")
	}
	return filepath.Join(home, ".config", "diagnote")
}

// File returns the default configuration file path.
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("author", d.Author)
	v.SetDefault("editor", d.Editor)
	v.SetDefault("image.timeout_seconds", d.Image.TimeoutSeconds)
	v.SetDefault("export.enabled", d.Export.Enabled)
	v.SetDefault("watcher.interval_ms", d.Watcher.IntervalMs)
}

// Load reads the configuration from path, or from the default file when
// path is empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DIAGNOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = File()
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ImageTimeout returns the image fetch timeout (0 means none).
func (c *Config) ImageTimeout() time.Duration {
	return time.Duration(c.Image.TimeoutSeconds) * time.Second
}

// WatchInterval returns the polling interval of the note change watcher.
func (c *Config) WatchInterval() time.Duration {
	if c.Watcher.IntervalMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Watcher.IntervalMs) * time.Millisecond
}

// EditorCommand returns the configured editor, then $EDITOR, then nvim.
func (c *Config) EditorCommand() string {
	if c.Editor != "" {
		return c.Editor
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "nvim"
}

// DBPath returns the SQLite database location inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "diagnote.db")
}
