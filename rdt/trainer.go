package rdt

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/glimpse-project/glimpse-sdk/internal/rdtlog"
)

func newSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// TrainResult is what Train hands back: the tree built so far (always
// non-nil, even on interrupt) and whether training ran to completion.
type TrainResult struct {
	Tree      *Tree
	Completed bool
}

// Trainer owns the queue, pool, candidate space, and sample set for one
// training run, following gm_rdt_context_train's single long-running
// function but split into a struct so Train/resume share state.
type Trainer struct {
	cfg    Config
	corpus Corpus
	log    *rdtlog.Logger

	tree      *Tree
	queue     *nodeQueue
	samples   []PixelSample
	images    []trainingImage
	cands     *candidateSpace
	ppm       float32
	bgDepth   float32
	cancelled atomic.Bool
}

// NewTrainer loads the corpus into memory images, builds the candidate
// space for the given seed, and allocates an empty tree, following the
// first half of gm_rdt_context_train before the sampling loop starts.
func NewTrainer(cfg Config, corpus Corpus, log *rdtlog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	meta, err := corpus.Meta()
	if err != nil {
		return nil, newError(CorpusLoad, "reading corpus metadata", err)
	}
	images := make([]trainingImage, meta.NImages)
	for i := range images {
		img, err := corpus.Image(i)
		if err != nil {
			return nil, err
		}
		images[i] = img
	}
	tree, err := NewTree(cfg.MaxDepth, meta.NLabels, meta.BgLabel, meta.VerticalFOV)
	if err != nil {
		return nil, err
	}
	rng := newSeededRand(cfg.Seed)
	cands := newCandidateSpace(rng, cfg.NUV, cfg.UVRange, cfg.NThresholds, cfg.ThresholdRange)

	return &Trainer{
		cfg:     cfg,
		corpus:  corpus,
		log:     log,
		tree:    tree,
		queue:   newNodeQueue(),
		images:  images,
		cands:   cands,
		ppm:     pixelsPerMeter(meta.Height, meta.VerticalFOV),
		bgDepth: cfg.BgDepth,
	}, nil
}

// Cancel sets the process-wide cancellation flag a SIGINT handler
// would trigger; exported so cmd/rdt-train can wire it to os/signal.
func (t *Trainer) Cancel() { t.cancelled.Store(true) }

// Train runs the breadth-first training loop of C7 to completion or
// interrupt, starting from a freshly sampled root unless Resume was
// called first to seed the queue from a checkpoint.
func (t *Trainer) Train() (*TrainResult, error) {
	if t.queue.len() == 0 && len(t.tree.ProbTables) == 0 {
		rng := newSeededRand(t.cfg.Seed)
		meta, _ := t.corpus.Meta()
		root := drawSamples(rng, t.images, t.cfg.NPixels, meta.BgLabel)
		t.samples = root
		indices := make([]int, len(root))
		for i := range indices {
			indices[i] = i
		}
		t.queue.pushBack(pendingNode{NodeIdx: 0, Depth: 0, Indices: indices})
	}

	p := newPool(t.cfg.NThreads, &t.cancelled)
	defer p.shutdown()

	start := time.Now()
	lastTransition := start
	lastDepth := -1

	for t.queue.len() > 0 {
		if t.cancelled.Load() {
			return &TrainResult{Tree: t.tree, Completed: false}, nil
		}
		node, _ := t.queue.popFront()
		if node.Depth != lastDepth {
			now := time.Now()
			t.log.Printf("depth %d -> %d after %s, +%s since last transition",
				lastDepth, node.Depth, now.Sub(start), now.Sub(lastTransition))
			t.log.Durations.Record(fmt.Sprintf("depth %d", node.Depth), now.Sub(lastTransition))
			lastTransition = now
			lastDepth = node.Depth
		}

		t.trainNode(p, node)
	}

	return &TrainResult{Tree: t.tree, Completed: true}, nil
}

// trainNode evaluates one queued node: dispatch to the pool, reduce
// across workers, and either split or emit a leaf, following step 3 of
// gm_rdt_context_train's main loop.
func (t *Trainer) trainNode(p *pool, node pendingNode) {
	jobs := t.buildJobs(node)
	results := p.dispatch(jobs)
	if t.cancelled.Load() {
		return
	}

	best := results[0].best
	for i := 1; i < len(results); i++ {
		if results[i].best.Gain > best.Gain {
			best = results[i].best
		}
	}

	t.log.Debugf("node %d depth %d: best gain %.4f uv=%d t=%d (%d samples)",
		node.NodeIdx, node.Depth, best.Gain, best.UVIdx, best.ThresholdIdx, len(node.Indices))

	labels := labelsOf(t.samples, node.Indices)
	nLabels := t.tree.NLabels
	parentHist := rootHistogram(labels, nLabels)

	canSplit := best.Gain > 0 && node.Depth+1 < t.tree.MaxDepth && !t.tree.isLastLevel(node.NodeIdx)
	if !canSplit {
		t.tree.addLeaf(node.NodeIdx, normalize(parentHist))
		return
	}

	off := t.cands.UVs[best.UVIdx]
	threshold := t.cands.Thresholds[best.ThresholdIdx]
	left, right := partitionIndices(t.images, t.samples, node.Indices, off, threshold, t.ppm, t.bgDepth)
	if len(left) == 0 || len(right) == 0 {
		t.tree.addLeaf(node.NodeIdx, normalize(parentHist))
		return
	}

	t.tree.setInterior(node.NodeIdx, off, threshold)
	t.queue.pushBack(pendingNode{NodeIdx: leftChild(node.NodeIdx), Depth: node.Depth + 1, Indices: left})
	t.queue.pushBack(pendingNode{NodeIdx: rightChild(node.NodeIdx), Depth: node.Depth + 1, Indices: right})
}

// buildJobs partitions the candidate UV range into n_threads disjoint
// slices, one per worker, following the "worker i gets
// [i*floor(n_uv/n), (i+1)*floor(n_uv/n))" rule of spec.md §4.7 with the
// last worker absorbing the remainder.
func (t *Trainer) buildJobs(node pendingNode) []*splitJob {
	n := t.cfg.NThreads
	nUV := len(t.cands.UVs)
	base := nUV / n
	jobs := make([]*splitJob, n)
	start := 0
	for i := 0; i < n; i++ {
		end := start + base
		if i == n-1 {
			end = nUV
		}
		jobs[i] = &splitJob{
			images:     t.images,
			samples:    t.samples,
			indices:    node.Indices,
			thresholds: t.cands.Thresholds,
			ppm:        t.ppm,
			bgDepth:    t.bgDepth,
			uvStart:    start,
			uvs:        t.cands.UVs[start:end],
		}
		start = end
	}
	return jobs
}

func normalize(counts []float64) []float32 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	out := make([]float32, len(counts))
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float32(c / total)
	}
	return out
}
