package rdt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHalfRoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 0.5, 2.0, 100.25, -3.75, 1e-5, 65504}
	for _, v := range values {
		h := FromFloat32(v)
		got := h.Float32()
		assert.InDelta(t, float64(v), float64(got), 0.05, "round trip for %v", v)
	}
}

func TestHalfZeroAndSign(t *testing.T) {
	assert.Equal(t, Half(0), FromFloat32(0))
	neg := FromFloat32(float32(math.Copysign(0, -1)))
	assert.Equal(t, uint16(0x8000), uint16(neg))
}

func TestHalfInfinity(t *testing.T) {
	h := FromFloat32(1e10)
	assert.True(t, math.IsInf(float64(h.Float32()), 1))
}

func TestHalfRasterDispatch(t *testing.T) {
	r := halfRaster{FromFloat32(1.5), FromFloat32(2.5)}
	assert.InDelta(t, 1.5, float64(r.at(0)), 0.01)
	assert.Equal(t, 2, r.len())

	f := float32Raster{1.5, 2.5}
	assert.Equal(t, float32(2.5), f.at(1))
}
