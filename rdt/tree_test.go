package rdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeAllSlotsUntrained(t *testing.T) {
	tree, err := NewTree(3, 5, 0, 1.2)
	require.NoError(t, err)
	assert.Len(t, tree.Nodes, (1<<3)-1)
	for _, n := range tree.Nodes {
		assert.True(t, n.IsUntrained())
	}
}

func TestNewTreeRejectsExcessiveDepth(t *testing.T) {
	_, err := NewTree(maxSafeDepth+1, 5, 0, 1.2)
	assert.Error(t, err)
}

func TestAddLeafAndSetInterior(t *testing.T) {
	tree, err := NewTree(2, 2, 0, 1.0)
	require.NoError(t, err)

	tree.setInterior(0, UVOffset{U1: 1}, 0.5)
	assert.True(t, tree.Nodes[0].IsInterior())

	tree.addLeaf(1, []float32{1, 0})
	assert.True(t, tree.Nodes[1].IsLeaf())
	assert.Equal(t, []float32{1, 0}, tree.ProbTables[0])
}

func TestChildIndexing(t *testing.T) {
	assert.Equal(t, 1, leftChild(0))
	assert.Equal(t, 2, rightChild(0))
	assert.Equal(t, 0, parentOf(1))
	assert.Equal(t, 0, parentOf(2))
}

func TestDepthOf(t *testing.T) {
	assert.Equal(t, 0, depthOf(0))
	assert.Equal(t, 1, depthOf(1))
	assert.Equal(t, 1, depthOf(2))
	assert.Equal(t, 2, depthOf(3))
}

func TestIsLastLevel(t *testing.T) {
	tree, err := NewTree(2, 2, 0, 1.0)
	require.NoError(t, err)
	assert.False(t, tree.isLastLevel(0))
	assert.True(t, tree.isLastLevel(1))
	assert.True(t, tree.isLastLevel(2))
}
