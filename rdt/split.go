package rdt

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// splitCandidate is one (uv,threshold) evaluation result, kept around
// only long enough to find the maximum-gain winner.
type splitCandidate struct {
	UVIdx        int
	ThresholdIdx int
	Gain         float64
}

// entropyBits converts a label-count row to Shannon entropy in bits.
// gonum's stat.Entropy normalizes and takes a natural log internally;
// dividing by math.Ln2 converts to the base-2 convention
// calculate_shannon_entropy used, without reimplementing the
// normalize+sum-of-plogp loop by hand.
func entropyBits(counts []float64) float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	p := make([]float64, len(counts))
	for i, c := range counts {
		p[i] = c / total
	}
	return stat.Entropy(p) / math.Ln2
}

// informationGain computes the gain of splitting a parent histogram
// into left/right children, weighted by child population fraction,
// following calculate_gain.
func informationGain(parent, left, right []float64) float64 {
	parentEntropy := entropyBits(parent)

	nLeft, nRight := sum(left), sum(right)
	total := nLeft + nRight
	if total == 0 {
		return 0
	}
	weighted := (nLeft/total)*entropyBits(left) + (nRight/total)*entropyBits(right)
	return parentEntropy - weighted
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

// bestSplit scans every (uv,threshold) cell in h against the parent
// histogram and returns the maximum-gain candidate, breaking ties by
// first-found order (lowest uv index, then lowest threshold index) to
// keep the search deterministic.
func bestSplit(h *nodeHistograms, parent []float64, nUV, nThresholds int) splitCandidate {
	best := splitCandidate{Gain: -1}
	for uvIdx := 0; uvIdx < nUV; uvIdx++ {
		for tIdx := 0; tIdx < nThresholds; tIdx++ {
			left, right := h.counts(uvIdx, tIdx)
			gain := informationGain(parent, left, right)
			if gain > best.Gain {
				best = splitCandidate{UVIdx: uvIdx, ThresholdIdx: tIdx, Gain: gain}
			}
		}
	}
	return best
}
