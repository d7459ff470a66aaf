package rdt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-project/glimpse-sdk/internal/rdtlog"
)

func separableTrainer(t *testing.T, maxDepth int) (*Trainer, Corpus) {
	img := trainingImage{
		Width: 2, Height: 1,
		Depth:  float32Raster{1.0, 3.0},
		Labels: []uint8{0, 1},
	}
	corpus := NewMemCorpus(CorpusMeta{Width: 2, Height: 1, VerticalFOV: twoLeafFOV, NLabels: 2, BgLabel: 255}, []trainingImage{img})

	cfg := testConfig()
	cfg.NPixels = 50
	cfg.NUV = 1
	cfg.NThresholds = 2
	cfg.MaxDepth = maxDepth
	require.NoError(t, cfg.Validate())

	trainer, err := NewTrainer(cfg, corpus, rdtlog.New(false))
	require.NoError(t, err)
	trainer.cands = &candidateSpace{
		UVs:        []UVOffset{{U1: 0, V1: 0, U2: 1, V2: 0}},
		Thresholds: []float32{-1.0},
	}
	return trainer, corpus
}

// TestResumeFullyTrainedReturnsError covers the idempotence property:
// resuming a tree that already has no expandable node under the
// current max_depth must fail with CheckpointFullyTrained rather than
// silently producing an identical tree.
func TestResumeFullyTrainedReturnsError(t *testing.T) {
	trainer, corpus := separableTrainer(t, 2)
	result, err := trainer.Train()
	require.NoError(t, err)
	require.True(t, result.Completed)

	trainer2, _ := NewTrainer(trainer.cfg, corpus, rdtlog.New(false))
	err = trainer2.Resume(result.Tree)
	require.Error(t, err)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, CheckpointFullyTrained, rerr.Kind)
}

// TestResumeExpandsToLargerDepth covers growing a checkpoint: when the
// new max_depth allows the old leaves to expand, Resume must requeue
// them instead of treating the tree as finished.
func TestResumeExpandsToLargerDepth(t *testing.T) {
	trainer, corpus := separableTrainer(t, 2)
	result, err := trainer.Train()
	require.NoError(t, err)
	require.True(t, result.Completed)

	cfg := trainer.cfg
	cfg.MaxDepth = 3
	trainer3, err := NewTrainer(cfg, corpus, rdtlog.New(false))
	require.NoError(t, err)

	err = trainer3.Resume(result.Tree)
	require.NoError(t, err)
	assert.Equal(t, 2, trainer3.queue.len())

	resumed, err := trainer3.Train()
	require.NoError(t, err)
	assert.True(t, resumed.Completed)

	// The two originally-pure leaves stay leaves: a single-label sample
	// set never finds a positive-gain split, so re-expanding them is a
	// no-op that still terminates cleanly.
	assert.True(t, resumed.Tree.Nodes[0].IsInterior())
	assert.True(t, resumed.Tree.Nodes[1].IsLeaf())
	assert.True(t, resumed.Tree.Nodes[2].IsLeaf())
}

// TestResumeRejectsLabelCountMismatch covers a checkpoint guard: a
// stored tree trained against a different n_labels must be rejected
// rather than silently misinterpreted.
func TestResumeRejectsLabelCountMismatch(t *testing.T) {
	trainer, _ := separableTrainer(t, 2)
	result, err := trainer.Train()
	require.NoError(t, err)

	otherImg := trainingImage{
		Width: 2, Height: 1,
		Depth:  float32Raster{1.0, 3.0},
		Labels: []uint8{0, 0},
	}
	otherCorpus := NewMemCorpus(CorpusMeta{Width: 2, Height: 1, VerticalFOV: 1.2, NLabels: 1, BgLabel: 255}, []trainingImage{otherImg})
	otherTrainer, err := NewTrainer(trainer.cfg, otherCorpus, rdtlog.New(false))
	require.NoError(t, err)

	err = otherTrainer.Resume(result.Tree)
	require.Error(t, err)
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, CheckpointMismatch, rerr.Kind)
}
