// Package config - file-based configuration for the ace command line tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-restore/filter"
	"github.com/nvr-ai/go-restore/images"
)

// Config is the full configuration of an equalization run.
type Config struct {
	// ACE holds the algorithm parameters.
	ACE filter.ACEOptions `json:"ace" yaml:"ace"`
	// Output controls how results are written.
	Output OutputConfig `json:"output" yaml:"output"`
	// Batch controls directory mode.
	Batch BatchConfig `json:"batch" yaml:"batch"`
}

// OutputConfig controls how results are written.
type OutputConfig struct {
	// Dir is the directory results are written to in batch mode.
	Dir string `json:"dir" yaml:"dir"`
	// Format forces an output encoding. Empty keeps the input's format.
	Format images.ImageFormat `json:"format,omitempty" yaml:"format,omitempty"`
	// Quality is the lossy encoding quality, 1..100.
	Quality int `json:"quality" yaml:"quality"`
	// Suffix is appended to the input file name in batch mode.
	Suffix string `json:"suffix" yaml:"suffix"`
	// MaxWidth and MaxHeight downscale inputs before equalization. Zero disables.
	MaxWidth  int `json:"maxWidth" yaml:"maxWidth"`
	MaxHeight int `json:"maxHeight" yaml:"maxHeight"`
}

// BatchConfig controls directory mode.
type BatchConfig struct {
	// Concurrency is the number of images equalized at once.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		ACE: filter.DefaultACEOptions(),
		Output: OutputConfig{
			Dir:     "./equalized",
			Quality: images.DefaultQuality,
			Suffix:  "_ace",
		},
		Batch: BatchConfig{
			Concurrency: 1,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := c.ACE.Config().Validate(); err != nil {
		return err
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output quality must be in 1..100, got %d", c.Output.Quality)
	}
	if c.Output.MaxWidth < 0 || c.Output.MaxHeight < 0 {
		return fmt.Errorf("output bounds must not be negative, got %dx%d", c.Output.MaxWidth, c.Output.MaxHeight)
	}
	if c.Output.Format != "" {
		if _, err := images.FormatFromPath("x." + string(c.Output.Format)); err != nil {
			return fmt.Errorf("output format: %w", err)
		}
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	return nil
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON (.json) file on top of DefaultConfig.
// Settings absent from the file keep their default values.
//
// Arguments:
//   - filename: Path of the configuration file.
//
// Returns:
//   - *Config: The merged and validated configuration.
//   - error: If the file cannot be read, parsed or validated.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return config, nil
}

// SaveConfig writes the configuration as YAML or JSON depending on the extension.
func (c *Config) SaveConfig(filename string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		return fmt.Errorf("unsupported config extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
