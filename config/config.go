// Package config loads server settings from a TOML file with sane
// defaults for local development. A missing file is not an error; the
// defaults run the server on :8080 against ./timesheets.db.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Listen         string   `toml:"listen"`
	DatabasePath   string   `toml:"database_path"`
	AllowedOrigins []string `toml:"allowed_origins"`
	Metrics        bool     `toml:"metrics"`
}

func Default() *Config {
	return &Config{
		Listen:         ":8080",
		DatabasePath:   "./timesheets.db",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
	}
}

// Load reads the config file at path, falling back to defaults for any
// field the file leaves out. A missing file yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
