package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/soypat/concave"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Config holds the extraction settings. Values loaded from a YAML file are
// overridden by command line flags.
type Config struct {
	Policy       string  `yaml:"policy"`
	MaxCurvature float64 `yaml:"max_curvature"`
	// Direction of directional growth. When set it takes precedence over
	// Policy.
	Direction []float64 `yaml:"direction"`
	Seed      int64     `yaml:"seed"`
}

// defaultConfig grows inwards without a curvature bound.
func defaultConfig() *Config {
	return &Config{
		Policy:       "inwards",
		MaxCurvature: math.Inf(1),
	}
}

// loadConfig merges the YAML file at path into the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// growthPolicy resolves the policy selected by the configuration.
func (cfg *Config) growthPolicy() (concave.Policy, error) {
	if len(cfg.Direction) == 0 {
		return concave.ParsePolicy(cfg.Policy)
	}
	if len(cfg.Direction) != 3 {
		return concave.Policy{}, fmt.Errorf("direction needs 3 components, got %d", len(cfg.Direction))
	}
	dir := r3.Vec{X: cfg.Direction[0], Y: cfg.Direction[1], Z: cfg.Direction[2]}
	if r3.Norm(dir) == 0 || math.IsNaN(r3.Norm(dir)) {
		return concave.Policy{}, errors.New("direction must be a non-zero vector")
	}
	return concave.Directional(dir), nil
}
