// Package config loads application configuration from a YAML file with
// environment overrides. A .env file in the working directory is honored
// for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API server.
	Listen string `yaml:"listen"`

	// DatabasePath is the SQLite database file path.
	DatabasePath string `yaml:"database_path"`

	// BufferMinutes is the gap suggested between a conflicting event's end
	// and a rescheduled start.
	BufferMinutes int `yaml:"buffer_minutes"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns an in-memory default configuration.
func Default() *Config {
	return &Config{
		Listen:        ":8787",
		DatabasePath:  "autocal.db",
		BufferMinutes: 15,
		LogLevel:      "info",
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides:
//
//	AUTOCAL_LISTEN, AUTOCAL_DB, AUTOCAL_BUFFER_MINUTES, AUTOCAL_LOG_LEVEL
//
// Variables from a .env file are loaded first (ignored when absent), so a
// checked-out development directory works without exporting anything.
func Load(path string) (*Config, error) {
	// Missing .env is not an error.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run - defaults plus environment are enough.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.BufferMinutes <= 0 {
		cfg.BufferMinutes = Default().BufferMinutes
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("AUTOCAL_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("AUTOCAL_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("AUTOCAL_BUFFER_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUTOCAL_BUFFER_MINUTES: %w", err)
		}
		cfg.BufferMinutes = n
	}
	if v := os.Getenv("AUTOCAL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}
