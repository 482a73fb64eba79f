package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the run-configuration supplied alongside the record stream.
// Its values are opaque build metadata passed through into the rendered
// summary; nothing here changes how results are interpreted.
type Config struct {
	GitHash string            `json:"githash" yaml:"githash"`
	Labels  map[string]string `json:"labels" yaml:"labels"`
}

// Load reads and parses a run-configuration file. JSON is the primary
// format; files with a .yaml or .yml extension are parsed as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for k := range c.Labels {
		if k == "" {
			return fmt.Errorf("label keys must not be empty")
		}
	}

	return nil
}
