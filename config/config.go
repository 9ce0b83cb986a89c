// Package config provides configuration loading and access for the simulator.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Sim    SimConfig    `yaml:"sim"`
	Fluid  FluidConfig  `yaml:"fluid"`
	Grid   GridConfig   `yaml:"grid"`
	View   ViewConfig   `yaml:"view"`
	Output OutputConfig `yaml:"output"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds the global physical constants of a run.
type SimConfig struct {
	GridRes     int        `yaml:"grid_res"`     // Cells per axis; dx = 1/grid_res
	FrameDT     float64    `yaml:"frame_dt"`     // Simulated seconds per output frame
	DT          float64    `yaml:"dt"`           // Substep size
	TotalFrames int        `yaml:"total_frames"` // Frames until the driver reaches Done
	Gravity     [3]float64 `yaml:"gravity"`
}

// FluidConfig holds equation-of-state parameters for the 3-D variants.
type FluidConfig struct {
	Stiffness   float64 `yaml:"stiffness"`    // EOS constant k; also scales the pressure force
	RestDensity float64 `yaml:"rest_density"` // rho0
}

// GridConfig holds block-grid options.
type GridConfig struct {
	BlockPhysics bool `yaml:"block_physics"` // Run density/force per block after migration
}

// ViewConfig holds the 2-D interactive variant's parameters.
// The 2-D variant deliberately carries its own dt/dx/stiffness; see fluid2.
type ViewConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	DX        float64 `yaml:"dx"`
	DT        float64 `yaml:"dt"`
	Substeps  int     `yaml:"substeps"` // Substeps per displayed frame
	Gravity   float64 `yaml:"gravity"`  // Y component; X is zero
	Stiffness float64 `yaml:"stiffness"`
}

// OutputConfig holds snapshot output options.
type OutputConfig struct {
	Dir        string `yaml:"dir"`         // Snapshot directory; empty disables output
	FrameStats bool   `yaml:"frame_stats"` // Write per-frame density stats CSV
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DX       float32 // Cell size: 1/grid_res
	InvDX    float32
	H        float32 // Smoothing radius: dx/2
	InvH     float32
	DT32     float32
	Gravity  [3]float32
	Substeps int // int(frame_dt/dt); remainder silently dropped
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configs the physics cannot run with.
func (c *Config) validate() error {
	if c.Sim.GridRes <= 0 {
		return fmt.Errorf("sim.grid_res must be positive, got %d", c.Sim.GridRes)
	}
	if c.Sim.DT <= 0 {
		return fmt.Errorf("sim.dt must be positive, got %g", c.Sim.DT)
	}
	if c.Sim.FrameDT < c.Sim.DT {
		return fmt.Errorf("sim.frame_dt %g is smaller than sim.dt %g", c.Sim.FrameDT, c.Sim.DT)
	}
	if c.Sim.TotalFrames < 0 {
		return fmt.Errorf("sim.total_frames must not be negative, got %d", c.Sim.TotalFrames)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	dx := 1.0 / float64(c.Sim.GridRes)
	c.Derived.DX = float32(dx)
	c.Derived.InvDX = float32(1.0 / dx)
	c.Derived.H = float32(dx / 2)
	c.Derived.InvH = float32(2 / dx)
	c.Derived.DT32 = float32(c.Sim.DT)
	for i, g := range c.Sim.Gravity {
		c.Derived.Gravity[i] = float32(g)
	}
	c.Derived.Substeps = int(c.Sim.FrameDT / c.Sim.DT)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
