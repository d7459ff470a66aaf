package rdt

import (
	"math"
	"math/rand"
)

// UVOffset is a pair of 2D pixel offsets, sampled in meters and scaled
// into pixels at sampling time by pixels-per-meter divided by the origin
// pixel's depth. It mirrors
// the uv_t pairs the original trainer drew from ctx->uv_range.
type UVOffset struct {
	U1, V1 float32
	U2, V2 float32
}

// candidateSpace is the fixed pool of (u,v) pairs and thresholds a node
// draws its split combinations from, generated once per tree so that
// resuming a checkpoint reproduces the exact same candidates.
type candidateSpace struct {
	UVs        []UVOffset
	Thresholds []float32
}

// pixelsPerMeter converts the vertical field of view and raster height
// into the scale factor sample_uv uses to turn meter offsets into pixel
// offsets at a given depth, following gm_rdt_context_train's ppm calc.
func pixelsPerMeter(heightPx int, verticalFOV float32) float32 {
	return float32(float64(heightPx)/2.0) / float32(math.Tan(float64(verticalFOV)/2.0))
}

// newCandidateSpace draws n_uv offset quadruples uniformly over
// [-uvRange/2, uvRange/2] and n_thresholds values evenly spaced across
// [-thresholdRange/2, thresholdRange/2], using a seeded source so the
// same seed always reproduces the same candidate pool.
func newCandidateSpace(rng *rand.Rand, nUV int, uvRange float32, nThresholds int, thresholdRange float32) *candidateSpace {
	cs := &candidateSpace{
		UVs:        make([]UVOffset, nUV),
		Thresholds: make([]float32, nThresholds),
	}
	half := uvRange / 2
	for i := range cs.UVs {
		cs.UVs[i] = UVOffset{
			U1: randRange(rng, -half, half),
			V1: randRange(rng, -half, half),
			U2: randRange(rng, -half, half),
			V2: randRange(rng, -half, half),
		}
	}
	if nThresholds == 1 {
		cs.Thresholds[0] = 0
		return cs
	}
	tHalf := thresholdRange / 2
	step := thresholdRange / float32(nThresholds-1)
	for i := range cs.Thresholds {
		cs.Thresholds[i] = -tHalf + step*float32(i)
	}
	return cs
}

func randRange(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}
