// Package fluid implements the 3-D SPH core: smoothing kernels, the density/
// pressure pass, and the force/integration pass. Both simulation variants
// drive these passes through a Neighbors capability, so the physics is
// written once and the containers only decide which particles are candidate
// neighbors of which.
package fluid

// Neighbors yields the candidate neighbors of p, including p itself.
// Implementations may over-approximate; both passes re-check the h² support
// radius before using a candidate.
type Neighbors func(p *Particle, yield func(q *Particle))

// Params holds the immutable physical constants of one variant. Stiffness is
// both the equation-of-state constant and the pressure-force scale; the two
// roles are deliberately conflated.
type Params struct {
	H           float32 // Smoothing radius
	DT          float32 // Substep size
	Gravity     Vec3
	Stiffness   float32 // EOS constant k
	RestDensity float32 // rho0
	Norm        float32 // Density normalization applied to kernel sums
	Domain      Vec3    // Upper domain bounds per axis; lower bounds are 0
}

// DensityPass computes density, its inverse, and EOS pressure for every
// particle. It must complete for all particles before ForcePass starts, since
// the force pass reads every neighbor's finalized pressure and inverse
// density.
//
// A particle with no neighbors inside h keeps rho = 0 and gets a non-finite
// InvDensity. That degeneracy is left unguarded.
func DensityPass(ps []Particle, near Neighbors, par Params) {
	h2 := par.H * par.H
	for i := range ps {
		p := &ps[i]
		var rho float32
		near(p, func(q *Particle) {
			r2 := q.Pos.Sub(p.Pos).LenSq()
			if r2 < h2 {
				rho += DensityKernel(h2, r2)
			}
		})
		rho *= par.Norm
		p.InvDensity = 1 / rho
		p.Pressure = par.Stiffness * (pow7(rho/par.RestDensity) - 1)
	}
}

// ForcePass accumulates pairwise pressure forces, integrates velocity and
// position with symplectic Euler, enforces the domain bounds, and clears the
// per-particle scratch so the next density pass starts from zero.
//
// Accumulation completes for all particles before any of them moves: every
// force reads only positions and pressures finalized at the start of the
// pass, so particles may be processed in any order.
func ForcePass(ps []Particle, near Neighbors, par Params) {
	h2 := par.H * par.H
	forces := make([]Vec3, len(ps))
	for i := range ps {
		p := &ps[i]
		invRho := p.InvDensity
		var pressure Vec3
		near(p, func(q *Particle) {
			dpos := q.Pos.Sub(p.Pos)
			r2 := dpos.LenSq()
			if r2 < h2 {
				invRhoQ := q.InvDensity
				grad := GradientKernel(h2, dpos, r2)
				pressure = pressure.Add(grad.Scale(
					p.Pressure*invRho*invRho + q.Pressure*invRhoQ*invRhoQ))
			}
		})
		forces[i] = pressure.Scale(par.Stiffness).Add(par.Gravity)
	}

	for i := range ps {
		p := &ps[i]
		p.Pressure = 0
		p.InvDensity = 0
		p.Vel = p.Vel.Add(forces[i].Scale(par.DT))
		p.Pos = p.Pos.Add(p.Vel.Scale(par.DT))
		clampAxes(p, par)
	}
}

// clampAxes enforces the axis-aligned domain bounds. The clamp zeroes only
// the inward-penetrating velocity component, so particles can still rebound
// away from a wall. The Y lower bound sits half a kernel radius above zero:
// it is treated as a floor plane.
func clampAxes(p *Particle, par Params) {
	floor := par.H / 2
	if p.Pos.Y < floor {
		p.Pos.Y = floor
		p.Vel.Y = max(p.Vel.Y, 0)
	}
	if p.Pos.Y > par.Domain.Y {
		p.Pos.Y = par.Domain.Y
		p.Vel.Y = min(p.Vel.Y, 0)
	}
	if p.Pos.X < 0 {
		p.Pos.X = 0
		p.Vel.X = max(p.Vel.X, 0)
	}
	if p.Pos.X > par.Domain.X {
		p.Pos.X = par.Domain.X
		p.Vel.X = min(p.Vel.X, 0)
	}
	if p.Pos.Z < 0 {
		p.Pos.Z = 0
		p.Vel.Z = max(p.Vel.Z, 0)
	}
	if p.Pos.Z > par.Domain.Z {
		p.Pos.Z = par.Domain.Z
		p.Vel.Z = min(p.Vel.Z, 0)
	}
}

// pow7 computes x⁷ without math.Pow.
func pow7(x float32) float32 {
	x2 := x * x
	x4 := x2 * x2
	return x4 * x2 * x
}
