package rdt

import (
	"sync"
	"sync/atomic"
)

// splitJob is the node record the driver publishes to every worker: a
// read-only view of the sample list reaching the node, plus the
// node's own disjoint UV candidate slice for that worker.
type splitJob struct {
	images     []trainingImage
	samples    []PixelSample
	indices    []int
	thresholds []float32
	ppm        float32
	bgDepth    float32
	uvStart    int // this worker's slice of the candidate space
	uvs        []UVOffset
}

// workerResult is one worker's best candidate over its disjoint UV
// slice; the driver reduces across workers by comparing Gain alone.
type workerResult struct {
	best splitCandidate
}

// pool is the long-lived worker pool of C6: n_threads goroutines
// rendezvous with the driver once per node via a per-worker job channel
// (the ready barrier) and a per-worker result channel (the finished
// barrier), a channel-based stand-in for the pthread_barrier_t pair in
// the spirit of spec.md §9's note; the WaitGroup only joins the workers
// on shutdown.
type pool struct {
	jobs      []chan *splitJob // one channel per worker; nil job means shutdown
	results   []chan workerResult
	wg        sync.WaitGroup
	cancelled *atomic.Bool
}

// newPool starts n long-lived workers, each reading its own job
// channel so the driver can hand out per-worker UV slices without a
// shared mutable pointer.
func newPool(n int, cancelled *atomic.Bool) *pool {
	p := &pool{
		jobs:      make([]chan *splitJob, n),
		results:   make([]chan workerResult, n),
		cancelled: cancelled,
	}
	for i := 0; i < n; i++ {
		p.jobs[i] = make(chan *splitJob)
		p.results[i] = make(chan workerResult)
		p.wg.Add(1)
		go p.workerLoop(i)
	}
	return p
}

func (p *pool) workerLoop(idx int) {
	defer p.wg.Done()
	for job := range p.jobs[idx] {
		if job == nil {
			return // shutdown signal
		}
		p.results[idx] <- runWorkerSlice(job, p.cancelled)
	}
}

// runWorkerSlice computes histograms and the best candidate for one
// worker's disjoint UV slice, polling the cancellation flag between
// candidates so a large node can be interrupted mid-way per spec.md §9.
func runWorkerSlice(job *splitJob, cancelled *atomic.Bool) workerResult {
	nLabels := maxLabel(job.samples, job.indices) + 1
	hist := newNodeHistograms(len(job.uvs), len(job.thresholds), nLabels)
	labels := labelsOf(job.samples, job.indices)
	parent := rootHistogram(labels, nLabels)

	for localUVIdx, off := range job.uvs {
		if cancelled.Load() {
			break
		}
		responses := make([]float32, len(job.indices))
		for i, si := range job.indices {
			s := &job.samples[si]
			img := &job.images[s.ImageIdx]
			responses[i] = sampleUV(img, s.X, s.Y, off, job.ppm, job.bgDepth)
		}
		accumulateUVTHistograms(hist, responses, labels, job.thresholds, localUVIdx)
	}

	best := bestSplit(hist, parent, len(job.uvs), len(job.thresholds))
	best.UVIdx += job.uvStart // translate back into the global candidate index space
	return workerResult{best: best}
}

func maxLabel(samples []PixelSample, indices []int) int {
	m := 0
	for _, idx := range indices {
		if l := int(samples[idx].Label); l > m {
			m = l
		}
	}
	return m
}

// dispatch publishes job i to worker i and blocks until every worker
// has crossed the finished rendezvous, returning results in worker
// order for a deterministic worker-ascending tie-break reduction.
func (p *pool) dispatch(jobs []*splitJob) []workerResult {
	for i, j := range jobs {
		p.jobs[i] <- j
	}
	results := make([]workerResult, len(jobs))
	for i := range jobs {
		results[i] = <-p.results[i]
	}
	return results
}

// shutdown sends the nil-job signal to every worker and joins them.
func (p *pool) shutdown() {
	for _, ch := range p.jobs {
		ch <- nil
	}
	p.wg.Wait()
}
