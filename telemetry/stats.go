package telemetry

import (
	"math"
	"sort"

	"github.com/ripplesim/ripple/fluid"
)

// FrameStats holds aggregated particle statistics for one completed frame.
// Density scratch is cleared between substeps, so the stats describe the
// kinematic state: speeds and heights.
type FrameStats struct {
	Frame     int `csv:"frame"`
	Particles int `csv:"particles"`

	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	HeightMean float64 `csv:"height_mean"`
	HeightMin  float64 `csv:"height_min"`
	HeightMax  float64 `csv:"height_max"`
}

// ComputeFrameStats aggregates one frame's particle state.
func ComputeFrameStats(frame int, ps []fluid.Particle) FrameStats {
	fs := FrameStats{Frame: frame, Particles: len(ps)}
	if len(ps) == 0 {
		return fs
	}

	speeds := make([]float64, len(ps))
	var speedSum, heightSum float64
	minY, maxY := float64(ps[0].Pos.Y), float64(ps[0].Pos.Y)
	for i := range ps {
		p := &ps[i]
		s := math.Sqrt(float64(p.Vel.LenSq()))
		speeds[i] = s
		speedSum += s

		y := float64(p.Pos.Y)
		heightSum += y
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	sort.Float64s(speeds)
	n := float64(len(ps))
	fs.SpeedMean = speedSum / n
	fs.SpeedP10 = Percentile(speeds, 0.10)
	fs.SpeedP50 = Percentile(speeds, 0.50)
	fs.SpeedP90 = Percentile(speeds, 0.90)
	fs.HeightMean = heightSum / n
	fs.HeightMin = minY
	fs.HeightMax = maxY
	return fs
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
