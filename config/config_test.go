package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	if cfg.Sim.GridRes != 20 {
		t.Errorf("grid_res = %d, want 20", cfg.Sim.GridRes)
	}
	if cfg.Sim.TotalFrames != 128 {
		t.Errorf("total_frames = %d, want 128", cfg.Sim.TotalFrames)
	}
	if cfg.Sim.Gravity != [3]float64{0, -100, 0} {
		t.Errorf("gravity = %v, want (0, -100, 0)", cfg.Sim.Gravity)
	}
	if cfg.Fluid.RestDensity != 1 {
		t.Errorf("rest_density = %v, want 1", cfg.Fluid.RestDensity)
	}
	if cfg.View.Substeps != 10 {
		t.Errorf("view substeps = %d, want 10", cfg.View.Substeps)
	}
}

func TestDerivedValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	d := cfg.Derived
	if math.Abs(float64(d.DX)-0.05) > 1e-9 {
		t.Errorf("dx = %v, want 1/grid_res = 0.05", d.DX)
	}
	if math.Abs(float64(d.H)-0.025) > 1e-9 {
		t.Errorf("h = %v, want dx/2 = 0.025", d.H)
	}
	if math.Abs(float64(d.InvDX)-20) > 1e-6 {
		t.Errorf("inv_dx = %v, want 20", d.InvDX)
	}

	// frame_dt/dt truncates: 0.1/0.0003 -> 333, the remainder is dropped.
	if d.Substeps != 333 {
		t.Errorf("substeps = %d, want 333", d.Substeps)
	}
}

func TestLoadOverridesSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(path, []byte("fluid:\n  stiffness: 2.0e-8\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading override: %v", err)
	}

	if cfg.Fluid.Stiffness != 2e-8 {
		t.Errorf("stiffness = %v, want overridden 2e-8", cfg.Fluid.Stiffness)
	}
	// Untouched sections keep their defaults.
	if cfg.Sim.GridRes != 20 {
		t.Errorf("grid_res = %d, want default 20", cfg.Sim.GridRes)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"non-positive grid_res", "sim:\n  grid_res: 0\n"},
		{"non-positive dt", "sim:\n  dt: -0.001\n"},
		{"frame_dt below dt", "sim:\n  frame_dt: 0.0001\n  dt: 0.0003\n"},
		{"negative total_frames", "sim:\n  total_frames: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() before Init() should panic")
		}
	}()
	Cfg()
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Fluid.Stiffness = 5e-8

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if back.Fluid.Stiffness != 5e-8 {
		t.Errorf("round-tripped stiffness = %v, want 5e-8", back.Fluid.Stiffness)
	}
}
