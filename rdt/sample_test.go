package rdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSampleUVInFrameReadsRaster covers the ordinary case: both probes
// land inside the raster, so the response is the real depth
// difference between them.
func TestSampleUVInFrameReadsRaster(t *testing.T) {
	img := &trainingImage{
		Width: 3, Height: 1,
		Depth: float32Raster{1.0, 2.0, 3.0},
	}
	// ppm/origin == 1 pixel-per-meter at depth 1.0; U1=0 probes the
	// origin itself, U2=1 probes one pixel to the right.
	off := UVOffset{U1: 0, V1: 0, U2: 1, V2: 0}
	resp := sampleUV(img, 0, 0, off, 1.0, 99)
	assert.InDelta(t, -1.0, resp, 1e-6)
}

// TestSampleUVOutOfFrameUsesBgDepth covers the silhouette-edge case: a
// probe whose scaled offset falls outside the raster must read
// bgDepth rather than the border pixel's real depth.
func TestSampleUVOutOfFrameUsesBgDepth(t *testing.T) {
	img := &trainingImage{
		Width: 3, Height: 1,
		Depth: float32Raster{1.0, 2.0, 3.0},
	}
	// U2=5 at ppm/origin==1 reaches x=5, well outside width 3.
	off := UVOffset{U1: 0, V1: 0, U2: 5, V2: 0}
	resp := sampleUV(img, 0, 0, off, 1.0, 42.0)
	assert.InDelta(t, 1.0-42.0, resp, 1e-6)
}

// TestSampleUVBothProbesOutOfFrame covers both probes missing the
// frame: the response collapses to zero, since both reads return the
// same bgDepth sentinel.
func TestSampleUVBothProbesOutOfFrame(t *testing.T) {
	img := &trainingImage{
		Width: 3, Height: 1,
		Depth: float32Raster{1.0, 2.0, 3.0},
	}
	off := UVOffset{U1: -5, V1: 0, U2: 5, V2: 0}
	resp := sampleUV(img, 0, 0, off, 1.0, 42.0)
	assert.InDelta(t, 0.0, resp, 1e-6)
}
