// Package persist serializes and loads the packed decision trees
// rdt builds, in both the binary container format and a textual JSON
// mirror.
package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/glimpse-project/glimpse-sdk/rdt"
)

// magic is the three-byte tag every binary tree file starts with,
// carried over from the original trainer's RDTHeader.tag.
var magic = [3]byte{'R', 'D', 'T'}

const currentVersion uint16 = 1

// binaryNode is the fixed-width wire representation of one packed
// node slot: UV offsets, threshold, and the label_pr_idx sentinel.
type binaryNode struct {
	U1, V1, U2, V2 float32
	Threshold      float32
	LabelPrIdx     uint32
}

// WriteBinary serializes t to w using the header layout of spec.md §6:
// {'R','D','T'}, version, depth, n_labels, bg_label, fov, the packed
// node array, then the flattened probability-table buffer.
func WriteBinary(w io.Writer, t *rdt.Tree) error {
	if err := binary.Write(w, binary.LittleEndian, magic); err != nil {
		return err
	}
	header := struct {
		Version     uint16
		Depth       uint8
		NLabels     uint8
		BgLabel     uint8
		VerticalFOV float32
	}{
		Version:     currentVersion,
		Depth:       uint8(t.MaxDepth),
		NLabels:     uint8(t.NLabels),
		BgLabel:     t.BgLabel,
		VerticalFOV: t.VerticalFOV,
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}

	nodes := make([]binaryNode, len(t.Nodes))
	for i, n := range t.Nodes {
		nodes[i] = binaryNode{
			U1: n.UV.U1, V1: n.UV.V1, U2: n.UV.U2, V2: n.UV.V2,
			Threshold:  n.Threshold,
			LabelPrIdx: n.LabelPrIdx,
		}
	}
	if err := binary.Write(w, binary.LittleEndian, nodes); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(t.ProbTables))); err != nil {
		return err
	}
	for _, table := range t.ProbTables {
		if err := binary.Write(w, binary.LittleEndian, table); err != nil {
			return err
		}
	}
	return nil
}

// ReadBinary deserializes a tree previously written by WriteBinary.
func ReadBinary(r io.Reader) (*rdt.Tree, error) {
	var gotMagic [3]byte
	if err := binary.Read(r, binary.LittleEndian, &gotMagic); err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("persist: bad magic %v, want %v", gotMagic, magic)
	}

	var header struct {
		Version     uint16
		Depth       uint8
		NLabels     uint8
		BgLabel     uint8
		VerticalFOV float32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header.Version != currentVersion {
		return nil, fmt.Errorf("persist: unsupported tree version %d", header.Version)
	}

	nNodes := (1 << uint(header.Depth)) - 1
	nodes := make([]binaryNode, nNodes)
	if err := binary.Read(r, binary.LittleEndian, nodes); err != nil {
		return nil, err
	}

	var nTables uint32
	if err := binary.Read(r, binary.LittleEndian, &nTables); err != nil {
		return nil, err
	}
	tables := make([][]float32, nTables)
	for i := range tables {
		row := make([]float32, header.NLabels)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, err
		}
		tables[i] = row
	}

	t := &rdt.Tree{
		MaxDepth:    int(header.Depth),
		NLabels:     int(header.NLabels),
		BgLabel:     header.BgLabel,
		VerticalFOV: header.VerticalFOV,
		Nodes:       make([]rdt.Node, nNodes),
		ProbTables:  tables,
	}
	for i, n := range nodes {
		t.Nodes[i] = rdt.Node{
			UV:         rdt.UVOffset{U1: n.U1, V1: n.V1, U2: n.U2, V2: n.V2},
			Threshold:  n.Threshold,
			LabelPrIdx: n.LabelPrIdx,
		}
	}
	return t, nil
}

// EncodeBinary is a convenience wrapper returning the serialized bytes.
func EncodeBinary(t *rdt.Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteBinary(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
