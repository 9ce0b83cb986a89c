package main

import (
	"math"

	"github.com/ripplesim/ripple/config"
)

// ParamSpec describes one tunable dimension. Stiffness is tuned in log10
// space so the optimizer sees a roughly linear response.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

var ParamSpecs = []ParamSpec{
	{Name: "log10_stiffness", Min: -9.0, Max: -6.0, Default: -8.0},
	{Name: "rest_density", Min: 0.5, Max: 2.0, Default: 1.0},
}

// normalize maps a raw parameter vector into [0,1]^n for the optimizer.
func normalize(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i, s := range ParamSpecs {
		out[i] = (raw[i] - s.Min) / (s.Max - s.Min)
	}
	return out
}

// denormalize maps an optimizer point back to raw parameter values,
// clamping to the declared bounds since CMA-ES proposals can wander outside.
func denormalize(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, s := range ParamSpecs {
		v := s.Min + x[i]*(s.Max-s.Min)
		out[i] = math.Max(s.Min, math.Min(s.Max, v))
	}
	return out
}

func defaults() []float64 {
	out := make([]float64, len(ParamSpecs))
	for i, s := range ParamSpecs {
		out[i] = s.Default
	}
	return out
}

// applyParams writes a raw parameter vector into a config. Derived values
// depend only on Sim, so mutating Fluid needs no recompute.
func applyParams(cfg *config.Config, raw []float64) {
	cfg.Fluid.Stiffness = math.Pow(10, raw[0])
	cfg.Fluid.RestDensity = raw[1]
}
