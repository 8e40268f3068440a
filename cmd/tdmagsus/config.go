package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-magsus/magsus/cycle"
	"github.com/cwbudde/algo-magsus/magsus/furnace"
	"github.com/cwbudde/algo-magsus/magsus/set"
	"github.com/cwbudde/algo-magsus/magsus/spline"
)

// Config is the YAML configuration of the command.
type Config struct {
	Furnace  FurnaceConfig  `yaml:"furnace"`
	Volume   VolumeConfig   `yaml:"volume"`
	Estimate EstimateConfig `yaml:"estimate"`
	Output   OutputConfig   `yaml:"output"`
}

// FurnaceConfig selects the empty-furnace run and its smoothing.
type FurnaceConfig struct {
	Path      string  `yaml:"path"`
	Strength  float64 `yaml:"strength"`
	Auto      bool    `yaml:"auto"`
	PadPoints int     `yaml:"pad_points"`
	PadStep   float64 `yaml:"pad_step"`
	Strict    bool    `yaml:"strict"`
}

// VolumeConfig controls sample volume normalisation.
type VolumeConfig struct {
	Enabled bool    `yaml:"enabled"`
	Sample  float64 `yaml:"sample"`
	Nominal float64 `yaml:"nominal"`
}

// EstimateConfig controls disordering-temperature estimation.
type EstimateConfig struct {
	Methods []string `yaml:"methods"`
	Min     float64  `yaml:"min"`
	Max     float64  `yaml:"max"`
	// Smoothing fixes the estimator spline strength; nil selects it from
	// the noise level.
	Smoothing *float64 `yaml:"smoothing"`
}

// OutputConfig controls where results go.
type OutputConfig struct {
	// Dir receives output files; empty writes to stdout.
	Dir   string `yaml:"dir"`
	Order int    `yaml:"order"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Furnace: FurnaceConfig{
			Strength:  spline.DefaultStrength,
			PadPoints: furnace.DefaultPadPoints,
			PadStep:   furnace.DefaultPadStep,
		},
		Volume: VolumeConfig{
			Enabled: true,
			Sample:  cycle.DefaultRealVolume,
			Nominal: cycle.DefaultNominalVolume,
		},
		Estimate: EstimateConfig{
			Methods: []string{"inflection", "tangent", "derivative-peak"},
			Min:     20,
			Max:     700,
		},
		Output: OutputConfig{Order: set.DefaultOrder},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and method names.
func (c Config) Validate() error {
	var errs []error
	if c.Furnace.Strength < 0 {
		errs = append(errs, fmt.Errorf("furnace.strength must be >= 0, got %g", c.Furnace.Strength))
	}
	if c.Furnace.PadPoints < 0 || c.Furnace.PadStep <= 0 {
		errs = append(errs, errors.New("furnace padding must be >= 0 points with a positive step"))
	}
	if c.Volume.Enabled && (c.Volume.Sample <= 0 || c.Volume.Nominal <= 0) {
		errs = append(errs, errors.New("volume.sample and volume.nominal must be positive"))
	}
	if c.Estimate.Min > c.Estimate.Max {
		errs = append(errs, fmt.Errorf("estimate.min %g above estimate.max %g", c.Estimate.Min, c.Estimate.Max))
	}
	if c.Estimate.Smoothing != nil && *c.Estimate.Smoothing < 0 {
		errs = append(errs, errors.New("estimate.smoothing must be >= 0"))
	}
	if _, err := c.methods(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) methods() ([]cycle.Method, error) {
	out := make([]cycle.Method, 0, len(c.Estimate.Methods))
	for _, name := range c.Estimate.Methods {
		m, err := cycle.ParseMethod(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (c Config) furnaceOptions() []furnace.Option {
	opts := []furnace.Option{
		furnace.WithStrength(c.Furnace.Strength),
		furnace.WithPadding(c.Furnace.PadPoints, c.Furnace.PadStep),
	}
	if c.Furnace.Auto {
		opts = append(opts, furnace.WithAutoStrength())
	}
	if c.Furnace.Strict {
		opts = append(opts, furnace.WithStrictRange())
	}
	return opts
}

func (c Config) cycleOptions(f *furnace.Furnace) []cycle.Option {
	opts := []cycle.Option{cycle.WithFurnace(f)}
	if c.Volume.Enabled {
		opts = append(opts, cycle.WithVolume(c.Volume.Sample, c.Volume.Nominal))
	}
	if c.Estimate.Smoothing != nil {
		opts = append(opts, cycle.WithSmoothing(*c.Estimate.Smoothing))
	}
	return opts
}
