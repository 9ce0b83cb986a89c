package main

import (
	"math"

	"github.com/ripplesim/ripple/config"
	"github.com/ripplesim/ripple/sim"
)

const (
	// evalFrames keeps each fitness run short; the dam break settles well
	// before the full run length.
	evalFrames = 16

	// blowupPenalty dominates any reachable speed so diverged runs sort last.
	blowupPenalty = 1e6
)

// evaluate scores one parameter vector: run a short headless simulation and
// measure how much residual motion is left once the fluid has settled.
// Lower is better. Non-finite state means the parameters blew up.
func evaluate(base *config.Config, raw []float64) float64 {
	cfg := *base
	applyParams(&cfg, raw)

	method := sim.NewBruteForce(&cfg, nil)
	for frame := 0; frame < evalFrames; frame++ {
		for s := 0; s < cfg.Derived.Substeps; s++ {
			method.Substep()
		}
	}

	ps := method.Particles()
	var speedSum float64
	for i := range ps {
		p := &ps[i]
		if !finite(p.Pos.X) || !finite(p.Pos.Y) || !finite(p.Pos.Z) {
			return blowupPenalty
		}
		speedSum += math.Sqrt(float64(p.Vel.LenSq()))
	}
	if len(ps) == 0 {
		return blowupPenalty
	}
	return speedSum / float64(len(ps))
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
