package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "FaceMorph")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "FaceMorph")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "facemorph")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "facemorph")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Relative data paths are resolved against the file's directory.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	prev := cfg.Data
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cfg.Data.FlameDir != prev.FlameDir {
		cfg.Data.FlameDir = resolve(path, cfg.Data.FlameDir)
	}
	if cfg.Data.SessionPath != prev.SessionPath {
		cfg.Data.SessionPath = resolve(path, cfg.Data.SessionPath)
	}
	if cfg.Data.ScreenshotDir != prev.ScreenshotDir {
		cfg.Data.ScreenshotDir = resolve(path, cfg.Data.ScreenshotDir)
	}
	return nil
}

func resolve(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}
