package fluid

import "math"

// DensityKernel evaluates the poly6-style smoothing kernel on a squared
// distance: max(0, (h²−r²)³) inside the support radius, zero outside.
func DensityKernel(h2, r2 float32) float32 {
	if r2 >= h2 {
		return 0
	}
	d := h2 - r2
	return max(0, d*d*d)
}

// GradientKernel evaluates the pressure-gradient kernel −6·(h²−r²)·dpos
// inside the support radius, the zero vector outside. This is a simplified
// proxy, not the exact gradient of DensityKernel's normalized form; the
// coefficient and sign are part of the contract.
func GradientKernel(h2 float32, dpos Vec3, r2 float32) Vec3 {
	if r2 >= h2 {
		return Vec3{}
	}
	return dpos.Scale(-6 * (h2 - r2))
}

// Poly6Norm returns the 3-D density normalization constant 315/(64π·h⁹).
// Only the 3-D all-pairs variant applies it; other variants normalize
// differently on purpose.
func Poly6Norm(h float32) float32 {
	h3 := float64(h) * float64(h) * float64(h)
	h9 := h3 * h3 * h3
	return float32(315.0 / (64.0 * math.Pi * h9))
}
