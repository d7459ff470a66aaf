package rdt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntropyUniform(t *testing.T) {
	counts := []float64{10, 10, 10, 10}
	got := entropyBits(counts)
	assert.InDelta(t, math.Log2(4), got, 1e-9)
}

func TestEntropySingleLabel(t *testing.T) {
	counts := []float64{0, 42, 0}
	assert.InDelta(t, 0, entropyBits(counts), 1e-9)
}

func TestEntropyEmpty(t *testing.T) {
	assert.Equal(t, 0.0, entropyBits([]float64{0, 0, 0}))
}

func TestInformationGainSeparates(t *testing.T) {
	parent := []float64{10, 10}
	left := []float64{10, 0}
	right := []float64{0, 10}
	gain := informationGain(parent, left, right)
	assert.InDelta(t, 1.0, gain, 1e-9) // perfectly separable: H(parent)=1 bit, H(children)=0
}

func TestInformationGainNoSeparation(t *testing.T) {
	parent := []float64{10, 10}
	left := []float64{5, 5}
	right := []float64{5, 5}
	gain := informationGain(parent, left, right)
	assert.InDelta(t, 0.0, gain, 1e-9)
}

func TestBestSplitPicksMaxGain(t *testing.T) {
	h := newNodeHistograms(2, 1, 2)
	// uv 0: perfectly separates; uv 1: no separation.
	h.add(0, 0, 0, 0)
	h.add(0, 0, 0, 0)
	h.add(0, 0, 1, 1)
	h.add(0, 0, 1, 1)
	h.add(1, 0, 0, 0)
	h.add(1, 0, 1, 0)
	h.add(1, 0, 0, 1)
	h.add(1, 0, 1, 1)

	parent := []float64{2, 2}
	best := bestSplit(h, parent, 2, 1)
	assert.Equal(t, 0, best.UVIdx)
	assert.Greater(t, best.Gain, 0.0)
}
