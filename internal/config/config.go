// Package config provides configuration loading and structs for doctxt.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Convert ConvertConfig `yaml:"convert"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Search  SearchConfig  `yaml:"search"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ConvertConfig holds tree conversion settings.
type ConvertConfig struct {
	InputRoot  string `yaml:"input_root"`
	OutputRoot string `yaml:"output_root"`
	// Workers is the number of files converted concurrently.
	Workers int `yaml:"workers"`
	// Extensions restricts conversion to a subset of .pdf, .pptx, .key and .docx.
	Extensions  []string `yaml:"extensions"`
	Incremental bool     `yaml:"incremental"`
}

// StorageConfig holds paths for the manifest database and the output index.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// MaxUploadMB caps the size of documents posted to the extract endpoint.
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// SearchConfig holds output index search settings.
type SearchConfig struct {
	DefaultLimit int     `yaml:"default_limit"`
	MaxLimit     int     `yaml:"max_limit"`
	TitleBoost   float64 `yaml:"title_boost"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	DebounceMS int   `yaml:"debounce_ms"`
	Recursive  *bool `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Debounce returns the debounce interval for file events.
func (w *WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// Default returns a config with defaults applied, used when no config file exists.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	if cfg.Convert.InputRoot != "" {
		cfg.Convert.InputRoot = expandPath(cfg.Convert.InputRoot, configDir)
	}
	if cfg.Convert.OutputRoot != "" {
		cfg.Convert.OutputRoot = expandPath(cfg.Convert.OutputRoot, configDir)
	}

	return &cfg, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	for _, e := range c.Convert.Extensions {
		switch "." + strings.TrimPrefix(strings.ToLower(e), ".") {
		case ".pdf", ".pptx", ".key", ".docx":
		default:
			return fmt.Errorf("invalid config: unsupported extension %q", e)
		}
	}
	if c.Convert.Workers < 0 {
		return fmt.Errorf("invalid config: workers must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 0 {
		return fmt.Errorf("invalid config: max_upload_mb must not be negative")
	}
	if c.Search.DefaultLimit < 0 || c.Search.MaxLimit < 0 {
		return fmt.Errorf("invalid config: search limits must not be negative")
	}
	if c.Search.DefaultLimit > 0 && c.Search.MaxLimit > 0 && c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("invalid config: default_limit %d exceeds max_limit %d", c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("invalid config: debounce_ms must not be negative")
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DefaultOutputRoot returns the output root used when none is configured: a txt_output
// directory next to the input root.
func DefaultOutputRoot(inputRoot string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(inputRoot)), "txt_output")
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
