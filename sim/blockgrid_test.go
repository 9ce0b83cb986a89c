package sim

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ripplesim/ripple/config"
	"github.com/ripplesim/ripple/fluid"
	"github.com/ripplesim/ripple/grid"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func TestNewBlockGridSeeding(t *testing.T) {
	cfg := defaultConfig(t)
	m := NewBlockGrid(cfg, nil)

	n := cfg.Sim.GridRes / 2
	want := n * n * n
	if got := m.Grid().NumParticles(); got != want {
		t.Errorf("seeded %d particles, want %d", got, want)
	}

	// The touched region covers the whole domain, including the extra layer
	// on the positive faces that owns the top half-cell strip, and is never
	// grown.
	blocks := (cfg.Sim.GridRes+grid.BlockSize-1)/grid.BlockSize + 1
	if got := m.Grid().Len(); got != blocks*blocks*blocks {
		t.Errorf("touched %d blocks, want %d", m.Grid().Len(), blocks*blocks*blocks)
	}
}

func TestMigrationConservesParticles(t *testing.T) {
	// With block physics off, a substep is pure migration: particles do not
	// move, so every one must land in exactly one block. The half-open owning
	// extents tile the domain, which covers the boundary case where a
	// particle sits exactly on an extent edge (every other lattice position
	// does).
	cfg := defaultConfig(t)
	cfg.Grid.BlockPhysics = false
	m := NewBlockGrid(cfg, nil)

	before := m.Particles()
	for i := 0; i < 3; i++ {
		m.Substep()
	}
	after := m.Particles()

	if len(after) != len(before) {
		t.Fatalf("particle count changed across migration: %d -> %d", len(before), len(after))
	}
	// Gather order is deterministic and positions are untouched, so the
	// state must be identical.
	for i := range before {
		if before[i].Pos != after[i].Pos {
			t.Errorf("particle %d moved during migration: %v -> %v", i, before[i].Pos, after[i].Pos)
			break
		}
	}
}

func TestMigrationCopiesNodes(t *testing.T) {
	cfg := defaultConfig(t)
	m := NewBlockGrid(cfg, nil)

	c := grid.Coord{X: 1, Y: 1, Z: 1}
	b, ok := m.Grid().Block(c)
	if !ok {
		t.Fatal("expected block at (1,1,1)")
	}
	b.Nodes[13] = 7.5

	m.Substep()

	nb, ok := m.Grid().Block(c)
	if !ok {
		t.Fatal("block vanished across substep")
	}
	if nb == b {
		t.Fatal("substep did not produce a new generation")
	}
	if nb.Nodes[13] != 7.5 {
		t.Errorf("node value after migration = %v, want 7.5 carried verbatim", nb.Nodes[13])
	}
}

func TestMigrateMissingAncestorPanics(t *testing.T) {
	cfg := defaultConfig(t)
	m := NewBlockGrid(cfg, nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for a block with no same-coordinate ancestor")
		}
	}()
	m.migrate(&grid.Block{}, &grid.Ancestors{})
}

func TestMigrationKeepsUpperEdgeParticle(t *testing.T) {
	// A particle near the upper domain bound sits past the core block
	// region's owning extents; the extra positive-face block layer must own
	// it, or migration destroys it.
	cfg := defaultConfig(t)
	m := NewBlockGrid(cfg, nil)

	pos := fluid.Vec3{X: 0.999, Y: 0.999, Z: 0.999}
	b, ok := m.Grid().Block(grid.Coord{X: 4, Y: 4, Z: 4})
	if !ok {
		t.Fatal("expected block at (4,4,4)")
	}
	b.AddParticle(fluid.Particle{Pos: pos})
	before := m.Grid().NumParticles()

	m.Substep()

	if got := m.Grid().NumParticles(); got != before {
		t.Fatalf("particle count changed across migration: %d -> %d", before, got)
	}
	found := 0
	for _, p := range m.Particles() {
		if p.Pos == pos {
			found++
		}
	}
	if found != 1 {
		t.Errorf("upper-edge particle present %d times after migration, want 1", found)
	}
}

func TestMigrationBoundaryResidency(t *testing.T) {
	// A particle exactly on an owning-extent boundary (grid position 3.5 on
	// X) is a candidate for the blocks on both sides but must end up
	// resident in exactly the upper one. grid_res 16 makes dx a power of
	// two, so the boundary position is exact in float32.
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("sim:\n  grid_res: 16\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	m := NewBlockGrid(cfg, nil)

	dx := cfg.Derived.DX
	pos := fluid.Vec3{X: 3.5 * dx, Y: 2.2 * dx, Z: 2.2 * dx}
	b, ok := m.Grid().Block(grid.Coord{X: 0, Y: 0, Z: 0})
	if !ok {
		t.Fatal("expected block at (0,0,0)")
	}
	b.AddParticle(fluid.Particle{Pos: pos})

	m.Substep()

	for _, c := range m.Grid().Coords() {
		nb, _ := m.Grid().Block(c)
		n := 0
		for _, p := range nb.Particles() {
			if p.Pos == pos {
				n++
			}
		}
		switch {
		case c == (grid.Coord{X: 1, Y: 0, Z: 0}):
			if n != 1 {
				t.Errorf("upper block holds %d copies, want 1", n)
			}
		case n != 0:
			t.Errorf("block %v holds %d copies, want 0", c, n)
		}
	}
}

func TestBlockPhysicsMatchesAllPairs(t *testing.T) {
	// Block-local passes see complete neighborhoods through the one-ring
	// halo (the kernel radius is half a cell, far below one block width), so
	// the grid variant must agree with the all-pairs baseline up to
	// summation-order noise.
	cfg := defaultConfig(t)
	cfg.Grid.BlockPhysics = true

	bg := NewBlockGrid(cfg, nil)
	bf := NewBruteForce(cfg, nil)

	const steps = 3
	for i := 0; i < steps; i++ {
		bg.Substep()
		bf.Substep()
	}

	gps := bg.Particles()
	fps := bf.Particles()
	if len(gps) != len(fps) {
		t.Fatalf("particle counts diverged: grid %d, all-pairs %d", len(gps), len(fps))
	}

	var gSpeed, fSpeed, gHeight, fHeight float64
	for i := range gps {
		gSpeed += math.Sqrt(float64(gps[i].Vel.LenSq()))
		fSpeed += math.Sqrt(float64(fps[i].Vel.LenSq()))
		gHeight += float64(gps[i].Pos.Y)
		fHeight += float64(fps[i].Pos.Y)
	}
	n := float64(len(gps))

	if d := math.Abs(gSpeed-fSpeed) / n; d > 1e-4 {
		t.Errorf("mean speed diverged: grid %v, all-pairs %v", gSpeed/n, fSpeed/n)
	}
	if d := math.Abs(gHeight-fHeight) / n; d > 1e-4 {
		t.Errorf("mean height diverged: grid %v, all-pairs %v", gHeight/n, fHeight/n)
	}
}

func TestSnapshotScaling(t *testing.T) {
	cfg := defaultConfig(t)

	t.Run("all-pairs", func(t *testing.T) {
		bf := NewBruteForce(cfg, nil)
		pts := bf.Snapshot()
		if len(pts) != len(bf.Particles()) {
			t.Fatalf("snapshot has %d points, want %d", len(pts), len(bf.Particles()))
		}
		wantRadius := cfg.Derived.H * 10
		if pts[0].Radius != wantRadius {
			t.Errorf("radius = %v, want %v", pts[0].Radius, wantRadius)
		}
		p := bf.Particles()[0]
		if pts[0].X != p.Pos.X*10 || pts[0].Y != p.Pos.Y*10 || pts[0].Z != p.Pos.Z*10 {
			t.Errorf("point %v is not the 10x-scaled position of %v", pts[0], p.Pos)
		}
	})

	t.Run("block grid", func(t *testing.T) {
		bg := NewBlockGrid(cfg, nil)
		pts := bg.Snapshot()
		if len(pts) != len(bg.Particles()) {
			t.Fatalf("snapshot has %d points, want %d", len(pts), len(bg.Particles()))
		}
		if pts[0].Radius != 0.3 {
			t.Errorf("radius = %v, want 0.3", pts[0].Radius)
		}
		p := bg.Particles()[0]
		if pts[0].X != p.Pos.X*3 || pts[0].Y != p.Pos.Y*3 || pts[0].Z != p.Pos.Z*3 {
			t.Errorf("point %v is not the 3x-scaled position of %v", pts[0], p.Pos)
		}
	})
}

func TestBruteForceSettlesOnFloor(t *testing.T) {
	// The standard lattice is spaced exactly at the kernel radius, so the
	// strict support check excludes every neighbor at first: the whole body
	// free-falls at g·t until rows reach the floor plane.
	cfg := defaultConfig(t)
	bf := NewBruteForce(cfg, nil)

	const steps = 3
	for i := 0; i < steps; i++ {
		bf.Substep()
	}

	g := cfg.Derived.Gravity[1]
	dt := cfg.Derived.DT32
	wantVY := g * dt * steps

	floor := cfg.Derived.H / 2
	for i, p := range bf.Particles() {
		if p.Vel.X != 0 || p.Vel.Z != 0 {
			t.Fatalf("particle %d gained lateral velocity (%v, %v)", i, p.Vel.X, p.Vel.Z)
		}
		if p.Pos.Y <= floor {
			// Clamped rows have had their fall absorbed by the floor.
			if p.Pos.Y != floor || p.Vel.Y != 0 {
				t.Fatalf("particle %d at floor has Y=%v VY=%v", i, p.Pos.Y, p.Vel.Y)
			}
			continue
		}
		if math.Abs(float64(p.Vel.Y-wantVY)) > 1e-5 {
			t.Fatalf("particle %d velocity = %v, want free-fall %v", i, p.Vel.Y, wantVY)
		}
	}
}
