package persist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-project/glimpse-sdk/rdt"
)

func TestJSONRoundTrip(t *testing.T) {
	tree := sampleTree(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, tree))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)

	assert.Equal(t, tree.MaxDepth, got.MaxDepth)
	assert.Equal(t, tree.NLabels, got.NLabels)
	assert.Equal(t, tree.BgLabel, got.BgLabel)
	assert.Equal(t, tree.VerticalFOV, got.VerticalFOV)
	assert.Equal(t, tree.Nodes, got.Nodes)
	assert.Equal(t, tree.ProbTables, got.ProbTables)
}

func TestWriteJSONRejectsUntrainedNode(t *testing.T) {
	tree, err := rdt.NewTree(2, 2, 255, 1.2)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteJSON(&buf, tree)
	assert.Error(t, err)
}
