package sim

import (
	"github.com/ripplesim/ripple/config"
	"github.com/ripplesim/ripple/fluid"
	"github.com/ripplesim/ripple/telemetry"
)

// BruteForce is the all-pairs variant: a flat, unordered particle list where
// every particle is a candidate neighbor of every other. O(n²) per substep;
// the correctness baseline for small particle counts.
type BruteForce struct {
	particles []fluid.Particle
	par       fluid.Params
	perf      *telemetry.PerfCollector
}

// NewBruteForce seeds the standard lattice (a cube of grid_res/2 particles
// per axis spaced by the kernel radius, at rest) and derives the variant's
// constants. The poly6 normalization applies to this variant only.
func NewBruteForce(cfg *config.Config, perf *telemetry.PerfCollector) *BruteForce {
	d := &cfg.Derived
	n := cfg.Sim.GridRes / 2
	return &BruteForce{
		particles: fluid.SeedLattice(n, n, n, d.H),
		par:       variantParams(cfg, fluid.Poly6Norm(d.H)),
		perf:      perf,
	}
}

// variantParams assembles the immutable constants shared by the 3-D variants.
func variantParams(cfg *config.Config, norm float32) fluid.Params {
	d := &cfg.Derived
	domain := float32(cfg.Sim.GridRes) * d.DX
	return fluid.Params{
		H:           d.H,
		DT:          d.DT32,
		Gravity:     fluid.Vec3{X: d.Gravity[0], Y: d.Gravity[1], Z: d.Gravity[2]},
		Stiffness:   float32(cfg.Fluid.Stiffness),
		RestDensity: float32(cfg.Fluid.RestDensity),
		Norm:        norm,
		Domain:      fluid.Vec3{X: domain, Y: domain, Z: domain},
	}
}

// Substep runs the density pass over all particles, then the force pass.
// The passes never interleave.
func (b *BruteForce) Substep() {
	near := fluid.AllPairs(b.particles)

	b.perf.StartPhase(telemetry.PhaseDensity)
	fluid.DensityPass(b.particles, near, b.par)
	b.perf.StartPhase(telemetry.PhaseForce)
	fluid.ForcePass(b.particles, near, b.par)
	b.perf.EndPhase()
}

// Snapshot returns every particle's position scaled for visualization, with
// this variant's fixed radius of 10h.
func (b *BruteForce) Snapshot() []telemetry.Point {
	const scale = 10
	pts := make([]telemetry.Point, len(b.particles))
	for i := range b.particles {
		p := &b.particles[i]
		pts[i] = telemetry.Point{
			X:      p.Pos.X * scale,
			Y:      p.Pos.Y * scale,
			Z:      p.Pos.Z * scale,
			Radius: b.par.H * scale,
		}
	}
	return pts
}

// Particles exposes the flat container for stats and tests.
func (b *BruteForce) Particles() []fluid.Particle {
	return b.particles
}
