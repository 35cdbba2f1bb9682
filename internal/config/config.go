// Package config loads and saves the cell-counter settings file.
// Missing files fall back to defaults; per-call tool arguments override
// whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/cell-counter-mcp/internal/segment"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "CELL_MCP_CONFIG"

// Config represents the settings loaded from YAML.
type Config struct {
	// Pipeline holds the default segmentation parameters.
	Pipeline segment.Params `yaml:"pipeline"`

	Logging struct {
		// Level is a logrus level name: debug, info, warn or error.
		Level string `yaml:"level"`
		// Format is "json" or "text".
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Results struct {
		// Directory receives CSV exports and stage images when the caller
		// gives no path.
		Directory string `yaml:"directory"`
	} `yaml:"results"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{Pipeline: segment.DefaultParams()}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Results.Directory = "."
	return cfg
}

// LoadConfig reads configuration from a YAML file. Fields the file omits keep
// their defaults. If the file doesn't exist, the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating the directory if needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Validate checks the pipeline defaults and the logging settings.
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", segment.ErrInvalidParameter, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", segment.ErrInvalidParameter, c.Logging.Format)
	}
	return nil
}

// PipelineParams returns a copy of the default pipeline parameters.
func (c *Config) PipelineParams() segment.Params {
	return c.Pipeline
}

// ResolvePath picks the config path: an explicit flag value wins over the
// environment variable.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvPath)
}
