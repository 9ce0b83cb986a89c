// Package fluid2 implements the 2-D interactive variant of the SPH core.
//
// It deliberately keeps its own particle type, normalization, and clamps
// instead of sharing the 3-D core: the 2-D variant divides density by the
// reference density where the 3-D all-pairs variant applies the poly6
// constant, and its walls sit at 0.1 (floor) and 1−dx (upper bounds). The
// mismatch between the variants' normalizations is preserved on purpose;
// unifying them would change observed behavior.
package fluid2

// Particle is one 2-D point mass. Unlike the 3-D core, InvDensity is not
// cleared between substeps: the interactive view shades particles by the last
// computed density.
type Particle struct {
	X, Y   float32
	VX, VY float32

	InvDensity float32
	Pressure   float32
}

// Params holds the 2-D variant's physical constants. The smoothing radius
// equals DX here, not DX/2.
type Params struct {
	DX          float32
	DT          float32
	GravityY    float32
	Stiffness   float32
	RestDensity float32
}

// SeedLattice places n×n particles at rest on a lattice spaced by dx with its
// lower corner at (0.1, 0.1).
func SeedLattice(n int, dx float32) []Particle {
	ps := make([]Particle, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ps = append(ps, Particle{
				X: float32(i)*dx + 0.1,
				Y: float32(j)*dx + 0.1,
			})
		}
	}
	return ps
}

// ResetPressure zeroes every particle's pressure. The view calls it once per
// displayed frame before running substeps.
func ResetPressure(ps []Particle) {
	for i := range ps {
		ps[i].Pressure = 0
	}
}

// Substep advances the system by one step: an all-pairs density/pressure pass
// over every particle, then an all-pairs force pass with integration and wall
// clamps. The density pass finishes for all particles before any force is
// accumulated, and all forces are accumulated before any particle moves.
func Substep(ps []Particle, par Params) {
	h := par.DX
	h2 := h * h

	for i := range ps {
		p := &ps[i]
		var rho float32
		for j := range ps {
			q := &ps[j]
			dx := q.X - p.X
			dy := q.Y - p.Y
			r2 := dx*dx + dy*dy
			if r2 < h2 {
				d := h2 - r2
				rho += max(0, d*d*d)
			}
		}
		rho /= par.RestDensity
		p.InvDensity = 1 / rho
		p.Pressure = par.Stiffness * (pow7(rho) - 1)
	}

	type force struct{ x, y float32 }
	forces := make([]force, len(ps))
	for i := range ps {
		p := &ps[i]
		invRho := p.InvDensity
		var fx, fy float32
		for j := range ps {
			q := &ps[j]
			dx := q.X - p.X
			dy := q.Y - p.Y
			r2 := dx*dx + dy*dy
			if r2 < h2 {
				invRhoQ := q.InvDensity
				gradScale := -6 * (h2 - r2)
				s := p.Pressure*invRho*invRho + q.Pressure*invRhoQ*invRhoQ
				fx += s * gradScale * dx
				fy += s * gradScale * dy
			}
		}
		forces[i] = force{par.Stiffness * fx, par.Stiffness*fy + par.GravityY}
	}

	for i := range ps {
		p := &ps[i]
		p.VX += forces[i].x * par.DT
		p.VY += forces[i].y * par.DT
		p.X += p.VX * par.DT
		p.Y += p.VY * par.DT
		clampWalls(p, par.DX)
	}
}

// clampWalls enforces the 2-D domain: floor at 0.1, left wall at 0, and
// right/top walls at 1−dx. Only the penetrating velocity component is zeroed.
func clampWalls(p *Particle, dx float32) {
	if p.X < 0 {
		p.X = 0
		p.VX = max(p.VX, 0)
	}
	if p.Y < 0.1 {
		p.Y = 0.1
		p.VY = max(p.VY, 0)
	}
	if p.X > 1-dx {
		p.X = 1 - dx
		p.VX = min(p.VX, 0)
	}
	if p.Y > 1-dx {
		p.Y = 1 - dx
		p.VY = min(p.VY, 0)
	}
}

// pow7 computes x⁷ without math.Pow.
func pow7(x float32) float32 {
	x2 := x * x
	x4 := x2 * x2
	return x4 * x2 * x
}
