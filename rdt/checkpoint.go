package rdt

import (
	"context"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// fovTolerance is the equality tolerance spec.md §4.9 specifies for
// comparing a checkpoint's stored field of view against the current
// corpus's.
const fovTolerance = 1e-6

type walkEntry struct {
	NodeIdx int
	Depth   int
	Indices []int
}

// Resume validates an existing tree against the trainer's configured
// geometry and re-derives the training queue and probability-table
// list by walking the checkpoint breadth-first, following the
// ctx->reload branch of gm_rdt_context_train. Unlike the single-
// threaded original, sibling interior nodes within a level are
// re-partitioned concurrently, bounded by a semaphore sized to
// n_threads — disjoint pixel lists mean no data sharing between
// siblings, so this is a safe parallelization the original never took.
func (t *Trainer) Resume(checkpoint *Tree) error {
	meta, err := t.corpus.Meta()
	if err != nil {
		return newError(CorpusLoad, "reading corpus metadata", err)
	}
	if checkpoint.NLabels != meta.NLabels {
		return newError(CheckpointMismatch, "label count mismatch", nil)
	}
	if math.Abs(float64(checkpoint.VerticalFOV-meta.VerticalFOV)) > fovTolerance {
		return newError(CheckpointMismatch, "vertical fov mismatch", nil)
	}
	if checkpoint.MaxDepth > t.cfg.MaxDepth {
		return newError(CheckpointMismatch, "stored depth exceeds configured max_depth", nil)
	}

	newTree, err := NewTree(t.cfg.MaxDepth, meta.NLabels, meta.BgLabel, meta.VerticalFOV)
	if err != nil {
		return err
	}
	copy(newTree.Nodes, checkpoint.Nodes)

	rng := newSeededRand(t.cfg.Seed)
	root := drawSamples(rng, t.images, t.cfg.NPixels, meta.BgLabel)
	t.samples = root
	rootIndices := make([]int, len(root))
	for i := range rootIndices {
		rootIndices[i] = i
	}

	sem := semaphore.NewWeighted(int64(t.cfg.NThreads))
	ctx := context.Background()

	probTables := make([][]float32, 0, len(checkpoint.ProbTables))
	var enqueued int

	level := []walkEntry{{NodeIdx: 0, Depth: 0, Indices: rootIndices}}

	for len(level) > 0 {
		var next []walkEntry
		var mu sync.Mutex
		var wg sync.WaitGroup

		for _, entry := range level {
			if entry.NodeIdx >= len(newTree.Nodes) {
				continue
			}
			stored := checkpoint.Nodes[entry.NodeIdx]

			switch {
			case stored.isUntrained():
				t.queue.pushBack(pendingNode{NodeIdx: entry.NodeIdx, Depth: entry.Depth, Indices: entry.Indices})
				enqueued++

			case stored.isLeaf():
				if entry.Depth+1 == checkpoint.MaxDepth && t.cfg.MaxDepth > checkpoint.MaxDepth {
					// A leaf frozen at the old max depth can be expanded
					// now that the tree is allowed to grow deeper.
					newTree.Nodes[entry.NodeIdx] = Node{LabelPrIdx: untrainedSentinel}
					t.queue.pushBack(pendingNode{NodeIdx: entry.NodeIdx, Depth: entry.Depth, Indices: entry.Indices})
					enqueued++
					continue
				}
				table := checkpoint.ProbTables[stored.LabelPrIdx-1]
				probTables = append(probTables, append([]float32(nil), table...))
				newTree.Nodes[entry.NodeIdx].LabelPrIdx = uint32(len(probTables))

			case stored.isInterior():
				entry := entry
				stored := stored
				wg.Add(1)
				_ = sem.Acquire(ctx, 1)
				go func() {
					defer wg.Done()
					defer sem.Release(1)
					left, right := partitionIndices(t.images, t.samples, entry.Indices, stored.UV, stored.Threshold, t.ppm, t.bgDepth)
					mu.Lock()
					next = append(next,
						walkEntry{NodeIdx: leftChild(entry.NodeIdx), Depth: entry.Depth + 1, Indices: left},
						walkEntry{NodeIdx: rightChild(entry.NodeIdx), Depth: entry.Depth + 1, Indices: right},
					)
					mu.Unlock()
				}()
				newTree.setInterior(entry.NodeIdx, stored.UV, stored.Threshold)
			}
		}

		wg.Wait()
		sort.Slice(next, func(i, j int) bool { return next[i].NodeIdx < next[j].NodeIdx })
		level = next
	}

	if enqueued == 0 {
		return newError(CheckpointFullyTrained, "tree already fully trained", nil)
	}

	newTree.ProbTables = probTables
	t.tree = newTree
	return nil
}
