// Package config provides configuration loading and structs for the Konomi
// engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/konomi/internal/interest"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool                         `yaml:"debug"`
	Server     ServerConfig                 `yaml:"server"`
	Storage    StorageConfig                `yaml:"storage"`
	Classifier ClassifierConfig             `yaml:"classifier"`
	Ingest     IngestConfig                 `yaml:"ingest"`
	References map[string]map[string]uint32 `yaml:"references"`
}

// ServerConfig holds HTTP server settings. The server is a local boundary
// for the host application, not a public listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the interest database location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ClassifierConfig holds the classification table location and reload
// behavior.
type ClassifierConfig struct {
	TablePath string `yaml:"table_path"`
	Watch     *bool  `yaml:"watch"`
}

// WatchOrDefault returns whether to hot-reload the table on file changes;
// defaults to true when unset.
func (c *ClassifierConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return true
}

// IngestConfig holds ingest batch limits.
type IngestConfig struct {
	// MaxBatch caps the URLs accepted per ingest request.
	MaxBatch int `yaml:"max_batch"`
	// Parallelism caps classification workers; 0 means one per CPU.
	Parallelism int `yaml:"parallelism"`
}

// Load reads and parses the config file at path, applies defaults, and
// expands paths. Returns an error if the file cannot be read or parsed.
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

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Classifier.TablePath = expandPath(cfg.Classifier.TablePath, configDir)

	return &cfg, nil
}

// Save writes the config to path. Used by the init subcommand to persist a
// starting configuration.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ReferenceVectors converts the configured named reference maps into typed
// vectors, validating every category name against the taxonomy.
func (c *Config) ReferenceVectors() (map[string]interest.Vector, error) {
	if len(c.References) == 0 {
		return nil, nil
	}
	refs := make(map[string]interest.Vector, len(c.References))
	for name, counts := range c.References {
		var v interest.Vector
		for category, count := range counts {
			cat, err := interest.Parse(category)
			if err != nil {
				return nil, fmt.Errorf("reference %q: %w", name, err)
			}
			v[cat] = count
		}
		refs[name] = v
	}
	return refs, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
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
