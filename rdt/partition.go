package rdt

// partitionIndices re-evaluates sample_uv for the winning (uv,threshold)
// of a node and routes each sample index into a left or right bucket,
// following collect_pixels: the winning candidate's response was
// already computed once during the histogram pass, but recomputing it
// here keeps the histogram buffers from needing to retain per-sample
// responses past the scan that picked the winner.
func partitionIndices(images []trainingImage, samples []PixelSample, indices []int, off UVOffset, threshold, ppm, bgDepth float32) (left, right []int) {
	left = make([]int, 0, len(indices))
	right = make([]int, 0, len(indices))
	for _, idx := range indices {
		s := &samples[idx]
		img := &images[s.ImageIdx]
		resp := sampleUV(img, s.X, s.Y, off, ppm, bgDepth)
		if resp < threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

// labelsOf gathers the ground-truth labels for a set of sample indices,
// the input rootHistogram consumes.
func labelsOf(samples []PixelSample, indices []int) []uint8 {
	labels := make([]uint8, len(indices))
	for i, idx := range indices {
		labels[i] = samples[idx].Label
	}
	return labels
}
