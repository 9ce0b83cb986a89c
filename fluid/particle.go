package fluid

// Particle is one SPH point mass. InvDensity and Pressure are per-substep
// scratch: the density pass writes them, the force pass reads and then
// clears them.
type Particle struct {
	Pos Vec3
	Vel Vec3

	InvDensity float32
	Pressure   float32
}

// SeedLattice places nx·ny·nz particles at rest on a cubic lattice spaced by
// `spacing`, with the lowest corner at the origin.
func SeedLattice(nx, ny, nz int, spacing float32) []Particle {
	ps := make([]Particle, 0, nx*ny*nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				ps = append(ps, Particle{
					Pos: Vec3{float32(i) * spacing, float32(j) * spacing, float32(k) * spacing},
				})
			}
		}
	}
	return ps
}

// AllPairs returns the O(n²) neighbor capability over ps: every particle is a
// candidate neighbor of every particle, itself included.
func AllPairs(ps []Particle) Neighbors {
	return func(_ *Particle, yield func(*Particle)) {
		for i := range ps {
			yield(&ps[i])
		}
	}
}
