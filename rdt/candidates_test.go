package rdt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCandidateSpaceDeterministic(t *testing.T) {
	a := newCandidateSpace(rand.New(rand.NewSource(7)), 50, 1.29, 10, 1.29)
	b := newCandidateSpace(rand.New(rand.NewSource(7)), 50, 1.29, 10, 1.29)
	assert.Equal(t, a.UVs, b.UVs)
	assert.Equal(t, a.Thresholds, b.Thresholds)
}

func TestNewCandidateSpaceDifferentSeeds(t *testing.T) {
	a := newCandidateSpace(rand.New(rand.NewSource(1)), 50, 1.29, 10, 1.29)
	b := newCandidateSpace(rand.New(rand.NewSource(2)), 50, 1.29, 10, 1.29)
	assert.NotEqual(t, a.UVs, b.UVs)
}

func TestThresholdsEvenlySpacedIncludeZero(t *testing.T) {
	cs := newCandidateSpace(rand.New(rand.NewSource(0)), 1, 1.0, 3, 2.0)
	require.Len(t, cs.Thresholds, 3)
	assert.InDelta(t, -1.0, cs.Thresholds[0], 1e-6)
	assert.InDelta(t, 0.0, cs.Thresholds[1], 1e-6)
	assert.InDelta(t, 1.0, cs.Thresholds[2], 1e-6)
}

func TestPixelsPerMeter(t *testing.T) {
	ppm := pixelsPerMeter(480, 1.2)
	assert.Greater(t, ppm, float32(0))
}
