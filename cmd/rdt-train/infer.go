package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/sbinet/npyio"
	"github.com/spf13/cobra"

	"github.com/glimpse-project/glimpse-sdk/persist"
	"github.com/glimpse-project/glimpse-sdk/rdt"
)

var (
	inferTreeFiles []string
	inferDepthFile string
	inferOutFile   string
	inferBgDepth   float32
	inferNThreads  int
	inferFlipFile  string
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Run forest inference over a depth frame",
	RunE:  runInfer,
}

func init() {
	flags := inferCmd.Flags()
	flags.StringSliceVar(&inferTreeFiles, "tree", nil, "trained tree file, repeatable for a forest")
	flags.StringVar(&inferDepthFile, "depth-file", "", "npy depth raster to classify (required)")
	flags.StringVar(&inferOutFile, "out-file", "", "npy file to write per-pixel label probabilities to (required)")
	flags.Float32Var(&inferBgDepth, "bg-depth", 6.0, "depth at or beyond which a pixel is forced to the background label")
	flags.IntVar(&inferNThreads, "n-threads", 0, "inference worker count, 0 selects hardware concurrency")
	flags.StringVar(&inferFlipFile, "flip-map", "", "optional json array permuting label indices for the horizontal-flip pass")

	cobra.CheckErr(inferCmd.MarkFlagRequired("depth-file"))
	cobra.CheckErr(inferCmd.MarkFlagRequired("out-file"))
}

func runInfer(cmd *cobra.Command, args []string) error {
	if len(inferTreeFiles) == 0 {
		return fmt.Errorf("infer: at least one --tree is required")
	}

	forest, err := loadForest(inferTreeFiles, inferBgDepth)
	if err != nil {
		return err
	}
	if inferFlipFile != "" {
		flipMap, err := readFlipMap(inferFlipFile)
		if err != nil {
			return err
		}
		forest.FlipMap = flipMap
	}

	frame, err := readDepthFrame(inferDepthFile)
	if err != nil {
		return err
	}

	nThreads := inferNThreads
	if nThreads <= 0 {
		nThreads = runtime.NumCPU()
	}
	forest.Infer(frame, nThreads)

	return writeProbs(inferOutFile, frame)
}

func loadForest(files []string, bgDepth float32) (*rdt.Forest, error) {
	trees := make([]*rdt.Tree, len(files))
	for i, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		t, err := persist.ReadBinary(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		trees[i] = t
	}
	first := trees[0]
	return &rdt.Forest{
		Trees:   trees,
		NLabels: first.NLabels,
		BgLabel: first.BgLabel,
		BgDepth: bgDepth,
	}, nil
}

func readFlipMap(name string) ([]int, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var flipMap []int
	if err := json.NewDecoder(f).Decode(&flipMap); err != nil {
		return nil, err
	}
	return flipMap, nil
}

func readDepthFrame(name string) (*rdt.InferFrame, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, err
	}
	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("infer: depth frame must be a 2D array, got shape %v", shape)
	}
	height, width := shape[0], shape[1]

	vals := make([]float32, width*height)
	if err := r.Read(&vals); err != nil {
		return nil, err
	}

	return &rdt.InferFrame{
		Width:  width,
		Height: height,
		Depth:  rdt.NewFloat32Raster(vals),
	}, nil
}

func writeProbs(name string, frame *rdt.InferFrame) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	flat := make([]float32, 0, len(frame.Probs)*len(frame.Probs[0]))
	for _, row := range frame.Probs {
		flat = append(flat, row...)
	}
	return npyio.Write(f, flat)
}
