// Package viz renders a trained tree as a graphviz graph, following
// the teacher's own OneTree.DrawGraph.
package viz

import (
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/glimpse-project/glimpse-sdk/rdt"
)

// DrawGraph builds a graphviz graph for t, one node per packed slot
// reachable from the root, following recurrentDraw's recursive
// descent: interior nodes show their (u,v,threshold), leaves are drawn
// as boxes labeled with their dominant label probability.
func DrawGraph(t *rdt.Tree) (*graphviz.Graphviz, *cgraph.Graph, error) {
	gv := graphviz.New()
	graph, err := gv.Graph()
	if err != nil {
		return nil, nil, err
	}
	if err := recurrentDraw(graph, t, 0, nil); err != nil {
		return nil, nil, err
	}
	return gv, graph, nil
}

func recurrentDraw(g *cgraph.Graph, t *rdt.Tree, idx int, parent *cgraph.Node) error {
	if idx >= len(t.Nodes) {
		return nil
	}
	node := t.Nodes[idx]
	if node.IsUntrained() {
		return nil // slot never reached during training, nothing to draw
	}

	current, err := g.CreateNode(fmt.Sprint(idx))
	if err != nil {
		return err
	}
	if parent != nil {
		if _, err := g.CreateEdge("", parent, current); err != nil {
			return err
		}
	}

	if node.IsLeaf() {
		current.Set("label", leafDescription(t, node.LabelPrIdx))
		current.Set("shape", "box")
		return nil
	}

	current.Set("label", interiorDescription(node))
	if err := recurrentDraw(g, t, 2*idx+1, current); err != nil {
		return err
	}
	return recurrentDraw(g, t, 2*idx+2, current)
}

func interiorDescription(n rdt.Node) string {
	return fmt.Sprintf("u=(%.3f,%.3f) v=(%.3f,%.3f) t=%.3f", n.UV.U1, n.UV.V1, n.UV.U2, n.UV.V2, n.Threshold)
}

func leafDescription(t *rdt.Tree, labelPrIdx uint32) string {
	table := t.ProbTables[labelPrIdx-1]
	best, bestP := 0, float32(0)
	for i, p := range table {
		if p > bestP {
			best, bestP = i, p
		}
	}
	return fmt.Sprintf("label %d (%.2f)", best, bestP)
}
