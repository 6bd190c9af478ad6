// Package config loads and saves the foveation engine configuration as YAML.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/foveate/internal/acuity"
	"github.com/gogpu/foveate/internal/lod"
)

// Config represents the engine configuration loaded from YAML.
type Config struct {
	// Gaze is the fixation and the radius of the sharp region.
	Gaze struct {
		// X, Y is the fixation in image pixels, origin top-left. Leaving
		// both out means the image centre. Any finite value, negative or
		// past the edge, is an explicit fixation.
		X *float64 `yaml:"x,omitempty"`
		Y *float64 `yaml:"y,omitempty"`

		// Radius is the full-resolution radius in pixels (radial model).
		Radius float64 `yaml:"radius"`
	} `yaml:"gaze"`

	// Viewing is the display geometry (cortical model).
	Viewing acuity.ViewingParameters `yaml:"viewing"`

	// Model is "radial" or "cortical".
	Model string `yaml:"model"`

	// Normalization is "absolute" or "relative". Relative needs the cortical model.
	Normalization string `yaml:"normalization"`

	// Acuity holds the Geisler & Perry constants.
	Acuity acuity.Constants `yaml:"acuity"`

	// Pyramid controls pyramid construction.
	Pyramid struct {
		// Sigma is the Gaussian applied before each 2x2 reduction; 0 is a pure box filter.
		Sigma float64 `yaml:"sigma"`
	} `yaml:"pyramid"`

	// Workers is the number of goroutines; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Gaze.Radius = acuity.DefaultGazeRadius

	cfg.Viewing = acuity.DefaultViewingParameters()
	cfg.Model = acuity.KindRadial.String()
	cfg.Normalization = lod.Absolute.String()
	cfg.Acuity = acuity.DefaultConstants()

	cfg.Pyramid.Sigma = 0.5
	cfg.Workers = 0

	return cfg
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// If the file doesn't exist, it returns the default configuration.
// The result is validated.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Validate checks every field. Errors wrap acuity.ErrInvalidParameter.
func (c *Config) Validate() error {
	if (c.Gaze.X == nil) != (c.Gaze.Y == nil) {
		return fmt.Errorf("%w: gaze needs both x and y", acuity.ErrInvalidParameter)
	}
	if x, y, ok := c.Fixation(); ok && (math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0)) {
		return fmt.Errorf("%w: gaze (%v, %v)", acuity.ErrInvalidParameter, x, y)
	}
	if _, err := acuity.NewRadial(c.Gaze.Radius); err != nil {
		return err
	}
	if err := c.Viewing.Validate(); err != nil {
		return err
	}
	if err := c.Acuity.Validate(); err != nil {
		return err
	}
	kind, err := c.ModelKind()
	if err != nil {
		return err
	}
	norm, err := c.NormalizationMode()
	if err != nil {
		return err
	}
	if norm == lod.Relative && kind != acuity.KindCortical {
		return fmt.Errorf("%w: relative normalization needs the cortical model", acuity.ErrInvalidParameter)
	}
	if !(c.Pyramid.Sigma >= 0) || math.IsInf(c.Pyramid.Sigma, 1) {
		return fmt.Errorf("%w: pyramid sigma %v", acuity.ErrInvalidParameter, c.Pyramid.Sigma)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", acuity.ErrInvalidParameter, c.Workers)
	}
	return nil
}

// GazeSet reports whether the configuration names an explicit fixation.
func (c *Config) GazeSet() bool {
	return c.Gaze.X != nil && c.Gaze.Y != nil
}

// Fixation returns the explicit fixation. ok is false when the gaze
// follows the image centre.
func (c *Config) Fixation() (x, y float64, ok bool) {
	if !c.GazeSet() {
		return 0, 0, false
	}
	return *c.Gaze.X, *c.Gaze.Y, true
}

// SetFixation sets an explicit fixation.
func (c *Config) SetFixation(x, y float64) {
	c.Gaze.X, c.Gaze.Y = &x, &y
}

// ClearFixation makes the gaze follow the image centre.
func (c *Config) ClearFixation() {
	c.Gaze.X, c.Gaze.Y = nil, nil
}

// ModelKind parses Model.
func (c *Config) ModelKind() (acuity.Kind, error) {
	return acuity.ParseKind(c.Model)
}

// NormalizationMode parses Normalization.
func (c *Config) NormalizationMode() (lod.Normalization, error) {
	return lod.ParseNormalization(c.Normalization)
}
