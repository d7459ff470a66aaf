package rdt

import "math"

// untrainedSentinel marks a packed node slot that has not been visited
// yet, distinguishing it from an interior node (LabelPrIdx == 0) and
// from a leaf (LabelPrIdx >= 1 pointing into ProbTables).
const untrainedSentinel = math.MaxUint32

// Node is one slot of the packed breadth-first tree, following
// glimpse_rdt.cc's Node layout: an interior node stores its winning
// (u,v) offsets and threshold, a leaf stores a 1-based index into the
// tree's probability table list via LabelPrIdx.
type Node struct {
	UV         UVOffset
	Threshold  float32
	LabelPrIdx uint32
}

func (n *Node) isUntrained() bool { return n.LabelPrIdx == untrainedSentinel }
func (n *Node) isLeaf() bool      { return n.LabelPrIdx >= 1 && n.LabelPrIdx != untrainedSentinel }
func (n *Node) isInterior() bool  { return n.LabelPrIdx == 0 }

// IsUntrained, IsLeaf, and IsInterior expose the same three-way
// sentinel classification to packages outside rdt (persist, viz)
// without leaking the untrainedSentinel constant itself.
func (n Node) IsUntrained() bool { return n.LabelPrIdx == untrainedSentinel }
func (n Node) IsLeaf() bool      { return n.LabelPrIdx >= 1 && n.LabelPrIdx != untrainedSentinel }
func (n Node) IsInterior() bool  { return n.LabelPrIdx == 0 }

// Tree is the packed binary tree produced by training: Nodes has
// 2^MaxDepth - 1 slots addressed breadth-first (root at 0, children of
// i at 2i+1 and 2i+2), and ProbTables holds one NLabels-length
// probability row per leaf, indexed by Node.LabelPrIdx-1.
type Tree struct {
	MaxDepth    int
	NLabels     int
	BgLabel     uint8
	VerticalFOV float32

	Nodes      []Node
	ProbTables [][]float32
}

// NewTree allocates a tree with every slot marked untrained, guarding
// against the pathological allocation spec.md §9 calls out (a
// max_depth of 30 would already demand a billion-node array).
func NewTree(maxDepth, nLabels int, bgLabel uint8, verticalFOV float32) (*Tree, error) {
	if maxDepth < 1 || maxDepth > maxSafeDepth {
		return nil, newError(ConfigMissing, "max_depth out of safe range for packed allocation", nil)
	}
	n := (1 << uint(maxDepth)) - 1
	t := &Tree{
		MaxDepth:    maxDepth,
		NLabels:     nLabels,
		BgLabel:     bgLabel,
		VerticalFOV: verticalFOV,
		Nodes:       make([]Node, n),
	}
	for i := range t.Nodes {
		t.Nodes[i].LabelPrIdx = untrainedSentinel
	}
	return t, nil
}

func leftChild(i int) int  { return 2*i + 1 }
func rightChild(i int) int { return 2*i + 2 }
func parentOf(i int) int   { return (i - 1) / 2 }

// depthOf returns the breadth-first depth of slot i, root being depth 0.
func depthOf(i int) int {
	d := 0
	for i > 0 {
		i = parentOf(i)
		d++
	}
	return d
}

// isLastLevel reports whether slot i's children would fall outside the
// packed array, i.e. it is forced to be a leaf regardless of gain.
func (t *Tree) isLastLevel(i int) bool {
	return rightChild(i) >= len(t.Nodes)
}

// addLeaf appends a probability row and points slot i at it through the
// table's 1-based index.
func (t *Tree) addLeaf(nodeIdx int, probs []float32) {
	t.ProbTables = append(t.ProbTables, probs)
	t.Nodes[nodeIdx].LabelPrIdx = uint32(len(t.ProbTables))
}

// setInterior records a winning split at slot i.
func (t *Tree) setInterior(nodeIdx int, off UVOffset, threshold float32) {
	t.Nodes[nodeIdx].UV = off
	t.Nodes[nodeIdx].Threshold = threshold
	t.Nodes[nodeIdx].LabelPrIdx = 0
}
