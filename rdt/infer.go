package rdt

import "sync"

// Forest is a set of trees sharing geometry, used together during
// inference the same way infer_labels.cc averages across the trained
// forest rather than a single tree.
type Forest struct {
	Trees   []*Tree
	NLabels int
	BgLabel uint8
	BgDepth float32
	FlipMap []int // optional left/right label permutation for the horizontal-flip pass
}

// InferFrame holds one depth frame's dimensions and raster, and the
// output probability accumulator the kernel fills in, one NLabels-wide
// row per pixel.
type InferFrame struct {
	Width, Height int
	Depth         depthRaster
	Probs         [][]float32 // len == Width*Height, each row len == NLabels
}

// Infer runs the stripe-by-thread inference kernel of C9 across
// nThreads workers, writing into disjoint pixel ranges so no
// synchronization beyond the final WaitGroup join is required,
// following infer_labels.cc's thread-per-stripe fan-out.
func (f *Forest) Infer(frame *InferFrame, nThreads int) {
	n := frame.Width * frame.Height
	if frame.Probs == nil || len(frame.Probs) != n {
		frame.Probs = make([][]float32, n)
		for i := range frame.Probs {
			frame.Probs[i] = make([]float32, f.NLabels)
		}
	}
	var wg sync.WaitGroup
	for k := 0; k < nThreads; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			f.inferStripe(frame, k, nThreads)
		}(k)
	}
	wg.Wait()
}

// inferStripe handles every pixel index congruent to offset mod stride,
// a disjoint subset of the frame so no worker ever writes another's
// output row.
func (f *Forest) inferStripe(frame *InferFrame, offset, stride int) {
	n := frame.Width * frame.Height
	flip := len(f.FlipMap) > 0

	for idx := offset; idx < n; idx += stride {
		depth := frame.Depth.at(idx)
		out := frame.Probs[idx]
		for i := range out {
			out[i] = 0
		}

		if depth >= f.BgDepth {
			out[f.BgLabel] = 1
			continue
		}

		x := idx % frame.Width
		y := idx / frame.Width

		for _, tree := range f.Trees {
			treePPM := pixelsPerMeter(frame.Height, tree.VerticalFOV)
			accumulateTree(tree, frame, x, y, false, nil, out, treePPM, f.BgDepth)
			if flip {
				accumulateTree(tree, frame, x, y, true, f.FlipMap, out, treePPM, f.BgDepth)
			}
		}

		denom := float32(len(f.Trees))
		if flip {
			denom *= 2
		}
		if denom > 0 {
			for i := range out {
				out[i] /= denom
			}
		}
	}
}

// accumulateTree descends one tree for pixel (x,y), optionally with the
// x-offset sign flipped (infer_labels.cc's flip pass), and adds the
// leaf's probability table into out, permuting indices through
// flipMap when flipping.
func accumulateTree(tree *Tree, frame *InferFrame, x, y int, flip bool, flipMap []int, out []float32, ppm, bgDepth float32) {
	img := newInferImage(frame)
	nodeIdx := 0
	for {
		node := &tree.Nodes[nodeIdx]
		if node.isLeaf() {
			table := tree.ProbTables[node.LabelPrIdx-1]
			for l, p := range table {
				dest := l
				if flip && flipMap != nil {
					dest = flipMap[l]
				}
				out[dest] += p
			}
			return
		}
		if node.isUntrained() {
			// A checkpoint resumed with a larger max_depth than it was
			// trained to can leave dangling untrained interior slots;
			// such a slot adds nothing to out for this tree rather than
			// panic.
			return
		}

		off := node.UV
		if flip {
			off.U1, off.U2 = -off.U1, -off.U2
		}
		resp := sampleUV(&img, x, y, off, ppm, bgDepth)
		if resp < node.Threshold {
			nodeIdx = leftChild(nodeIdx)
		} else {
			nodeIdx = rightChild(nodeIdx)
		}
	}
}

// newInferImage adapts an InferFrame to the trainingImage shape
// sampleUV expects, avoiding a second sampling implementation for
// inference.
func newInferImage(frame *InferFrame) trainingImage {
	return trainingImage{
		Width:  frame.Width,
		Height: frame.Height,
		Depth:  frame.Depth,
	}
}
