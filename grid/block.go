package grid

import (
	"fmt"

	"github.com/ripplesim/ripple/fluid"
)

// BlockSize is the block edge length in grid cells.
const BlockSize = 4

// NodeCount is the number of field nodes per block (BlockSize³).
const NodeCount = BlockSize * BlockSize * BlockSize

// MaxParticlesPerBlock bounds each block's resident particle buffer.
const MaxParticlesPerBlock = 1024

// Coord identifies a block by its integer 3-D coordinate in block units.
type Coord struct {
	X, Y, Z int32
}

// Block owns up to MaxParticlesPerBlock particles and a fixed array of field
// nodes holding Eulerian auxiliary data. A particle belongs to exactly one
// block at any instant; migration moves particles wholesale between
// generations, never shares them.
type Block struct {
	Coord Coord
	Nodes [NodeCount]float32

	particles [MaxParticlesPerBlock]fluid.Particle
	count     int
}

// BaseCell returns the block's lowest corner in grid-cell units.
func (b *Block) BaseCell() (x, y, z int32) {
	return b.Coord.X * BlockSize, b.Coord.Y * BlockSize, b.Coord.Z * BlockSize
}

// AddParticle appends a particle to the block's buffer. Overflowing the fixed
// capacity is a configuration bug, not a runtime condition, and panics.
func (b *Block) AddParticle(p fluid.Particle) {
	if b.count >= MaxParticlesPerBlock {
		panic(fmt.Sprintf("grid: block %v exceeds %d particles", b.Coord, MaxParticlesPerBlock))
	}
	b.particles[b.count] = p
	b.count++
}

// Particles returns the block's resident particles. The slice aliases the
// block's buffer; it stays valid for the lifetime of the block's generation.
func (b *Block) Particles() []fluid.Particle {
	return b.particles[:b.count]
}

// Len returns the number of resident particles.
func (b *Block) Len() int {
	return b.count
}

// Ancestors is the 3³ neighborhood of a block in the previous generation,
// indexed by relative offset. Entries are nil where no block exists; callers
// decide which absences are fatal.
type Ancestors struct {
	blocks [27]*Block
}

// At returns the previous-generation block at relative offset (dx, dy, dz),
// each in {-1, 0, 1}, or nil if no block exists there.
func (a *Ancestors) At(dx, dy, dz int) *Block {
	return a.blocks[ancestorIndex(dx, dy, dz)]
}

// All returns the raw neighborhood, self included. Nil entries mark absent
// blocks.
func (a *Ancestors) All() []*Block {
	return a.blocks[:]
}

func ancestorIndex(dx, dy, dz int) int {
	return (dx+1)*9 + (dy+1)*3 + (dz + 1)
}
