package rdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeQueueFIFO(t *testing.T) {
	q := newNodeQueue()
	q.pushBack(pendingNode{NodeIdx: 0})
	q.pushBack(pendingNode{NodeIdx: 1})
	q.pushBack(pendingNode{NodeIdx: 2})

	assert.Equal(t, 3, q.len())

	first, ok := q.popFront()
	assert.True(t, ok)
	assert.Equal(t, 0, first.NodeIdx)

	second, ok := q.popFront()
	assert.True(t, ok)
	assert.Equal(t, 1, second.NodeIdx)

	assert.Equal(t, 1, q.len())
}

func TestNodeQueueEmptyPop(t *testing.T) {
	q := newNodeQueue()
	_, ok := q.popFront()
	assert.False(t, ok)
}

func TestNodeQueueBreadthFirstOrdering(t *testing.T) {
	q := newNodeQueue()
	q.pushBack(pendingNode{NodeIdx: 0, Depth: 0})
	n0, _ := q.popFront()
	q.pushBack(pendingNode{NodeIdx: leftChild(n0.NodeIdx), Depth: 1})
	q.pushBack(pendingNode{NodeIdx: rightChild(n0.NodeIdx), Depth: 1})

	left, _ := q.popFront()
	right, _ := q.popFront()
	assert.Equal(t, 1, left.NodeIdx)
	assert.Equal(t, 2, right.NodeIdx)
}
