package rdt

import "gorgonia.org/tensor"

// nodeHistograms holds every left/right label histogram a worker needs
// to evaluate its slice of UV candidates against every threshold, laid
// out as a dense [nUV][nThresholds][2*nLabels] buffer the same way the
// teacher's allocateArrays backs its raw Hessian in a tensor.Dense
// instead of a slice of slices of slices.
type nodeHistograms struct {
	nLabels     int
	nThresholds int
	buf         *tensor.Dense
}

func newNodeHistograms(nUV, nThresholds, nLabels int) *nodeHistograms {
	buf := tensor.New(tensor.WithShape(nUV, nThresholds, 2*nLabels), tensor.Of(tensor.Float64))
	return &nodeHistograms{
		nLabels:     nLabels,
		nThresholds: nThresholds,
		buf:         buf,
	}
}

func (h *nodeHistograms) add(uvIdx, tIdx int, side int, label uint8) {
	col := side*h.nLabels + int(label)
	cur, err := h.buf.At(uvIdx, tIdx, col)
	if err != nil {
		panic(err) // indices are computed by this package, never out of bounds
	}
	if err := h.buf.SetAt(cur.(float64)+1.0, uvIdx, tIdx, col); err != nil {
		panic(err)
	}
}

// counts returns the left and right label-count rows for one
// (uv,threshold) cell, fresh slices safe for the caller to mutate.
func (h *nodeHistograms) counts(uvIdx, tIdx int) (left, right []float64) {
	left = make([]float64, h.nLabels)
	right = make([]float64, h.nLabels)
	for l := 0; l < h.nLabels; l++ {
		lv, err := h.buf.At(uvIdx, tIdx, l)
		if err != nil {
			panic(err)
		}
		rv, err := h.buf.At(uvIdx, tIdx, h.nLabels+l)
		if err != nil {
			panic(err)
		}
		left[l] = lv.(float64)
		right[l] = rv.(float64)
	}
	return left, right
}

// accumulateUVTHistograms fills the left/right histograms for a single
// UV candidate index across every threshold, following
// accumulate_uvt_lr_histograms: a sample's response to one UV offset
// is compared against every threshold in a single pass, since the
// response only needs computing once per (sample, uv) pair.
func accumulateUVTHistograms(h *nodeHistograms, responses []float32, labels []uint8, thresholds []float32, uvIdx int) {
	for i, resp := range responses {
		label := labels[i]
		for tIdx, thresh := range thresholds {
			if resp < thresh {
				h.add(uvIdx, tIdx, 0, label)
			} else {
				h.add(uvIdx, tIdx, 1, label)
			}
		}
	}
}

// rootHistogram returns the label counts across all samples reaching a
// node, used both as the entropy baseline for gain and as the leaf
// probability table when a node is not split further.
func rootHistogram(labels []uint8, nLabels int) []float64 {
	counts := make([]float64, nLabels)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}
