// Package grid implements a sparse 3-D grid of fixed-size particle blocks
// with double-buffered generational updates. Blocks exist only for touched
// coordinates; an update pass computes an entirely new generation of blocks
// from the previous one and swaps it in atomically, so concurrent per-block
// updates never observe a half-updated neighbor.
package grid

import (
	"runtime"
	"sort"
	"sync"

	"github.com/ripplesim/ripple/fluid"
)

// parallelThreshold is the minimum block count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 16

// Grid is a sparse mapping from block coordinate to Block.
type Grid struct {
	blocks map[Coord]*Block

	numWorkers int
}

// New creates an empty grid.
func New() *Grid {
	return &Grid{
		blocks:     make(map[Coord]*Block),
		numWorkers: runtime.GOMAXPROCS(0),
	}
}

// Touch ensures a block exists at c and returns it. Touching is how the grid
// topology is built; Advance never creates or destroys blocks.
func (g *Grid) Touch(c Coord) *Block {
	if b, ok := g.blocks[c]; ok {
		return b
	}
	b := &Block{Coord: c}
	g.blocks[c] = b
	return b
}

// Block returns the block at c, if one exists.
func (g *Grid) Block(c Coord) (*Block, bool) {
	b, ok := g.blocks[c]
	return b, ok
}

// Len returns the number of existing blocks.
func (g *Grid) Len() int {
	return len(g.blocks)
}

// Coords returns every existing block coordinate in deterministic order.
func (g *Grid) Coords() []Coord {
	cs := make([]Coord, 0, len(g.blocks))
	for c := range g.blocks {
		cs = append(cs, c)
	}
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return cs
}

// NumParticles returns the total resident particle count across all blocks.
func (g *Grid) NumParticles() int {
	n := 0
	for _, b := range g.blocks {
		n += b.count
	}
	return n
}

// GatherParticles copies every resident particle into one slice, in
// deterministic block order.
func (g *Grid) GatherParticles() []fluid.Particle {
	out := make([]fluid.Particle, 0, g.NumParticles())
	for _, c := range g.Coords() {
		out = append(out, g.blocks[c].Particles()...)
	}
	return out
}

// ancestors collects the previous-generation 3³ neighborhood of c.
func (g *Grid) ancestors(c Coord) Ancestors {
	var an Ancestors
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				nc := Coord{c.X + int32(dx), c.Y + int32(dy), c.Z + int32(dz)}
				an.blocks[ancestorIndex(dx, dy, dz)] = g.blocks[nc]
			}
		}
	}
	return an
}

// Advance computes the next generation of every block and swaps it in.
//
// update runs once per block, possibly concurrently with other blocks. It
// receives an empty next-generation block at the same coordinate and the
// previous generation's 3³ neighborhood, and must read old state only through
// that neighborhood. The swap happens only after every update has returned,
// which is the full-generation barrier: no update ever sees a mix of old and
// new state.
func (g *Grid) Advance(update func(b *Block, an *Ancestors)) {
	coords := g.Coords()
	next := make(map[Coord]*Block, len(coords))
	fresh := make([]*Block, len(coords))
	for i, c := range coords {
		b := &Block{Coord: c}
		fresh[i] = b
		next[c] = b
	}

	one := func(i int) {
		an := g.ancestors(coords[i])
		update(fresh[i], &an)
	}

	if len(coords) < parallelThreshold || g.numWorkers < 2 {
		for i := range coords {
			one(i)
		}
	} else {
		var wg sync.WaitGroup
		chunk := (len(coords) + g.numWorkers - 1) / g.numWorkers
		for w := 0; w < g.numWorkers; w++ {
			start := w * chunk
			end := min(start+chunk, len(coords))
			if start >= end {
				continue
			}
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				for i := start; i < end; i++ {
					one(i)
				}
			}(start, end)
		}
		wg.Wait()
	}

	g.blocks = next
}
