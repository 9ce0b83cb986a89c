package sim

import (
	"fmt"

	"github.com/ripplesim/ripple/config"
	"github.com/ripplesim/ripple/fluid"
	"github.com/ripplesim/ripple/grid"
	"github.com/ripplesim/ripple/telemetry"
)

// BlockGrid is the spatially partitioned variant: particles live in sparse
// fixed-size blocks and every substep rebuilds the next generation of blocks
// from the previous one, gathering each block's particles from its 3³
// neighborhood. Neighbor queries therefore never leave a block's halo.
//
// Per-substep particle displacement must stay below one block width
// (BlockSize·dx): a particle that jumps further than the one-ring halo in a
// single substep is missed by every block's gather and silently lost. That
// is a dt/dx constraint on the configuration, not something migration
// defends against.
type BlockGrid struct {
	grid         *grid.Grid
	par          fluid.Params
	invDX        float32
	blockPhysics bool
	perf         *telemetry.PerfCollector
}

// NewBlockGrid touches a block region covering the whole domain, seeds the
// standard lattice into the owning blocks, and derives the variant's
// constants.
func NewBlockGrid(cfg *config.Config, perf *telemetry.PerfCollector) *BlockGrid {
	d := &cfg.Derived
	m := &BlockGrid{
		grid:         grid.New(),
		par:          variantParams(cfg, fluid.Poly6Norm(d.H)),
		invDX:        d.InvDX,
		blockPhysics: cfg.Grid.BlockPhysics,
		perf:         perf,
	}

	// Topology is fixed for the whole run: blocks are touched once here and
	// never created or destroyed afterwards. Owning extents sit half a cell
	// below the block's cells, so the core region alone would leave the top
	// half-cell strip of the clamped domain unowned; one extra layer on each
	// positive face keeps particles clamped to the upper domain bound owned.
	blocks := int32((cfg.Sim.GridRes + grid.BlockSize - 1) / grid.BlockSize)
	for x := int32(0); x <= blocks; x++ {
		for y := int32(0); y <= blocks; y++ {
			for z := int32(0); z <= blocks; z++ {
				m.grid.Touch(grid.Coord{X: x, Y: y, Z: z})
			}
		}
	}

	n := cfg.Sim.GridRes / 2
	for _, p := range fluid.SeedLattice(n, n, n, d.H) {
		b, ok := m.grid.Block(m.owner(p.Pos))
		if !ok {
			panic(fmt.Sprintf("sim: seed particle at %v outside touched region", p.Pos))
		}
		b.AddParticle(p)
	}
	return m
}

// owner returns the coordinate of the block whose half-open extent contains
// the position. Extents are offset by half a cell, so the owner of grid
// position g is the block covering cell floor(g + 0.5).
func (m *BlockGrid) owner(pos fluid.Vec3) grid.Coord {
	return grid.Coord{
		X: cellToBlock(pos.X * m.invDX),
		Y: cellToBlock(pos.Y * m.invDX),
		Z: cellToBlock(pos.Z * m.invDX),
	}
}

func cellToBlock(g float32) int32 {
	c := int32(g + 0.5)
	if g+0.5 < 0 {
		c--
	}
	return c / grid.BlockSize
}

// Substep migrates particles across the block grid, then optionally runs the
// shared SPH passes block-locally against each block's halo.
func (m *BlockGrid) Substep() {
	m.perf.StartPhase(telemetry.PhaseMigrate)
	m.grid.Advance(m.migrate)
	if m.blockPhysics {
		m.perf.StartPhase(telemetry.PhaseForce)
		m.grid.Advance(m.forceStep)
	}
	m.perf.EndPhase()
}

// migrate builds one next-generation block from its previous-generation
// neighborhood: clone the same-coordinate ancestor's field nodes verbatim,
// then gather every neighborhood particle whose position falls inside this
// block's extent. When block physics is enabled it also runs the density
// pass over the gathered residents, so the following force generation reads
// finalized pressures.
func (m *BlockGrid) migrate(b *grid.Block, an *grid.Ancestors) {
	self := an.At(0, 0, 0)
	if self == nil {
		// Topology changed mid-run; that is a configuration bug upstream,
		// not a recoverable data condition.
		panic(fmt.Sprintf("grid: block %v has no same-coordinate ancestor", b.Coord))
	}
	b.Nodes = self.Nodes

	// Block extent in grid-cell units, offset down by half a cell. The
	// gather runs in two stages: a candidate test against the extent widened
	// by a half-cell margin on both sides, then residency against the
	// half-open owning extent, which tiles the domain exactly so of all
	// blocks considering a candidate exactly one keeps it. The owning extent
	// is a subset of the widened one, so the margin stage never changes the
	// outcome; it is kept as the explicit candidate/residency split rather
	// than folded into a single test.
	bx, by, bz := b.BaseCell()
	lo := fluid.Vec3{X: float32(bx) - 0.5, Y: float32(by) - 0.5, Z: float32(bz) - 0.5}
	hi := fluid.Vec3{
		X: float32(bx+grid.BlockSize) - 0.5,
		Y: float32(by+grid.BlockSize) - 0.5,
		Z: float32(bz+grid.BlockSize) - 0.5,
	}
	const margin = 0.5

	for _, ab := range an.All() {
		if ab == nil {
			continue
		}
		for _, p := range ab.Particles() {
			g := p.Pos.Scale(m.invDX)
			if !inExtent(g, lo.X-margin, lo.Y-margin, lo.Z-margin,
				hi.X+margin, hi.Y+margin, hi.Z+margin) {
				continue
			}
			if inExtent(g, lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z) {
				b.AddParticle(p)
			}
		}
	}

	if m.blockPhysics {
		fluid.DensityPass(b.Particles(), haloNeighbors(an), m.par)
	}
}

// forceStep builds the force generation: residents and nodes carry over from
// the same-coordinate ancestor, forces read the neighborhood's finalized
// density-pass scratch, and integration moves only this block's own copies.
// Residency is refreshed by the next substep's migrate pass.
func (m *BlockGrid) forceStep(b *grid.Block, an *grid.Ancestors) {
	self := an.At(0, 0, 0)
	if self == nil {
		panic(fmt.Sprintf("grid: block %v has no same-coordinate ancestor", b.Coord))
	}
	b.Nodes = self.Nodes
	for _, p := range self.Particles() {
		b.AddParticle(p)
	}
	fluid.ForcePass(b.Particles(), haloNeighbors(an), m.par)
}

// inExtent reports whether g lies in the half-open box [lo, hi) on all axes.
func inExtent(g fluid.Vec3, lx, ly, lz, hx, hy, hz float32) bool {
	return g.X >= lx && g.Y >= ly && g.Z >= lz &&
		g.X < hx && g.Y < hy && g.Z < hz
}

// haloNeighbors adapts a block's previous-generation neighborhood to the
// fluid package's neighbor capability.
func haloNeighbors(an *grid.Ancestors) fluid.Neighbors {
	return func(_ *fluid.Particle, yield func(*fluid.Particle)) {
		for _, ab := range an.All() {
			if ab == nil {
				continue
			}
			ps := ab.Particles()
			for i := range ps {
				yield(&ps[i])
			}
		}
	}
}

// Snapshot returns every resident particle's position scaled for
// visualization, with this variant's fixed radius.
func (m *BlockGrid) Snapshot() []telemetry.Point {
	const scale = 3
	ps := m.grid.GatherParticles()
	pts := make([]telemetry.Point, len(ps))
	for i := range ps {
		pts[i] = telemetry.Point{
			X:      ps[i].Pos.X * scale,
			Y:      ps[i].Pos.Y * scale,
			Z:      ps[i].Pos.Z * scale,
			Radius: 0.3,
		}
	}
	return pts
}

// Particles copies out every resident particle for stats and tests.
func (m *BlockGrid) Particles() []fluid.Particle {
	return m.grid.GatherParticles()
}

// Grid exposes the underlying block grid for tests.
func (m *BlockGrid) Grid() *grid.Grid {
	return m.grid
}
