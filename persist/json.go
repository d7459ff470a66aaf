package persist

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/glimpse-project/glimpse-sdk/rdt"
)

// jsonNode mirrors recursive_build_tree's per-node object: an interior
// node carries t/u/v plus l/r children, a leaf carries p.
type jsonNode struct {
	T *float32   `json:"t,omitempty"`
	U []float32  `json:"u,omitempty"`
	V []float32  `json:"v,omitempty"`
	L *jsonNode  `json:"l,omitempty"`
	R *jsonNode  `json:"r,omitempty"`
	P []float32  `json:"p,omitempty"`
}

// jsonTree mirrors save_tree_json's root object.
type jsonTree struct {
	RDTVersionWas int       `json:"_rdt_version_was"`
	Depth         int       `json:"depth"`
	VerticalFOV   float32   `json:"vertical_fov"`
	NLabels       int       `json:"n_labels"`
	BgLabel       uint8     `json:"bg_label"`
	Root          *jsonNode `json:"root"`
}

// WriteJSON serializes t as the textual mirror of the binary
// container, following save_tree_json's field names exactly.
func WriteJSON(w io.Writer, t *rdt.Tree) error {
	root, err := buildJSONNode(t, 0)
	if err != nil {
		return err
	}
	doc := jsonTree{
		RDTVersionWas: int(currentVersion),
		Depth:         t.MaxDepth,
		VerticalFOV:   t.VerticalFOV,
		NLabels:       t.NLabels,
		BgLabel:       t.BgLabel,
		Root:          root,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func buildJSONNode(t *rdt.Tree, idx int) (*jsonNode, error) {
	if idx >= len(t.Nodes) {
		return nil, fmt.Errorf("persist: node index %d out of range", idx)
	}
	n := t.Nodes[idx]
	switch {
	case n.IsLeaf():
		table := t.ProbTables[n.LabelPrIdx-1]
		return &jsonNode{P: table}, nil
	case n.IsInterior():
		left, err := buildJSONNode(t, 2*idx+1)
		if err != nil {
			return nil, err
		}
		right, err := buildJSONNode(t, 2*idx+2)
		if err != nil {
			return nil, err
		}
		threshold := n.Threshold
		return &jsonNode{
			T: &threshold,
			U: []float32{n.UV.U1, n.UV.V1},
			V: []float32{n.UV.U2, n.UV.V2},
			L: left,
			R: right,
		}, nil
	default:
		return nil, fmt.Errorf("persist: node %d left untrained, cannot serialize", idx)
	}
}

// ReadJSON parses the textual mirror back into a packed Tree.
func ReadJSON(r io.Reader) (*rdt.Tree, error) {
	var doc jsonTree
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	t, err := rdt.NewTree(doc.Depth, doc.NLabels, doc.BgLabel, doc.VerticalFOV)
	if err != nil {
		return nil, err
	}
	if err := fillFromJSONNode(t, doc.Root, 0); err != nil {
		return nil, err
	}
	return t, nil
}

func fillFromJSONNode(t *rdt.Tree, n *jsonNode, idx int) error {
	if n == nil {
		return nil
	}
	if n.P != nil {
		t.ProbTables = append(t.ProbTables, n.P)
		t.Nodes[idx].LabelPrIdx = uint32(len(t.ProbTables))
		return nil
	}
	if n.T == nil || len(n.U) != 2 || len(n.V) != 2 {
		return fmt.Errorf("persist: malformed interior node at index %d", idx)
	}
	t.Nodes[idx] = rdt.Node{
		UV:         rdt.UVOffset{U1: n.U[0], V1: n.U[1], U2: n.V[0], V2: n.V[1]},
		Threshold:  *n.T,
		LabelPrIdx: 0,
	}
	if err := fillFromJSONNode(t, n.L, 2*idx+1); err != nil {
		return err
	}
	return fillFromJSONNode(t, n.R, 2*idx+2)
}
