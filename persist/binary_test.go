package persist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-project/glimpse-sdk/rdt"
)

func sampleTree(t *testing.T) *rdt.Tree {
	tree, err := rdt.NewTree(2, 2, 255, 1.2)
	require.NoError(t, err)
	tree.Nodes[0] = rdt.Node{
		UV:        rdt.UVOffset{U1: 1, V1: 0.5, U2: -1, V2: -0.5},
		Threshold: 0.25,
	}
	tree.ProbTables = append(tree.ProbTables, []float32{0.8, 0.2})
	tree.Nodes[1] = rdt.Node{LabelPrIdx: uint32(len(tree.ProbTables))}
	tree.ProbTables = append(tree.ProbTables, []float32{0.1, 0.9})
	tree.Nodes[2] = rdt.Node{LabelPrIdx: uint32(len(tree.ProbTables))}
	return tree
}

func TestBinaryRoundTrip(t *testing.T) {
	tree := sampleTree(t)

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, tree))

	got, err := ReadBinary(&buf)
	require.NoError(t, err)

	assert.Equal(t, tree.MaxDepth, got.MaxDepth)
	assert.Equal(t, tree.NLabels, got.NLabels)
	assert.Equal(t, tree.BgLabel, got.BgLabel)
	assert.Equal(t, tree.VerticalFOV, got.VerticalFOV)
	assert.Equal(t, tree.Nodes, got.Nodes)
	assert.Equal(t, tree.ProbTables, got.ProbTables)
}

func TestBinaryRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer([]byte{'X', 'X', 'X'})
	_, err := ReadBinary(buf)
	assert.Error(t, err)
}

func TestEncodeBinaryMatchesWriteBinary(t *testing.T) {
	tree := sampleTree(t)

	encoded, err := EncodeBinary(tree)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, tree))
	assert.Equal(t, buf.Bytes(), encoded)
}
