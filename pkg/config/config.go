// Package config loads the pngtuber YAML configuration and watches it for
// changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NicolasHaas/pngtuber/pkg/host"
)

// DefaultPath is used when no -config flag is given.
const DefaultPath = "pngtuber.yaml"

// File is the on-disk configuration.
type File struct {
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	MetricsAddr string        `yaml:"metrics_addr,omitempty"`
	Source      host.Settings `yaml:"source"`
}

// Default returns the configuration used when no file exists.
func Default() *File {
	return &File{
		LogLevel:  "info",
		LogFormat: "text",
		Source:    host.Settings{},
	}
}

// Load reads path. A missing file yields Default.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from user-provided CLI flag
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults.
func Parse(data []byte) (*File, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Source == nil {
		cfg.Source = host.Settings{}
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
