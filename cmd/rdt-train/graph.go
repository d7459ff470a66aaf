package main

import (
	"os"
	"path"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/glimpse-project/glimpse-sdk/persist"
	"github.com/glimpse-project/glimpse-sdk/viz"
)

var (
	graphTreeFile  string
	graphOutFile   string
	graphFormat    string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render a trained tree as a graphviz figure",
	RunE:  runGraph,
}

var graphFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
}

func init() {
	flags := graphCmd.Flags()
	flags.StringVar(&graphTreeFile, "tree", "", "trained tree file (required)")
	flags.StringVar(&graphOutFile, "out-file", "", "image file to render to (required)")
	flags.StringVar(&graphFormat, "format", "svg", "one of png, svg, jpg")

	cobra.CheckErr(graphCmd.MarkFlagRequired("tree"))
	cobra.CheckErr(graphCmd.MarkFlagRequired("out-file"))
}

func runGraph(cmd *cobra.Command, args []string) error {
	f, err := os.Open(graphTreeFile)
	if err != nil {
		return err
	}
	t, err := persist.ReadBinary(f)
	f.Close()
	if err != nil {
		return err
	}

	gv, graph, err := viz.DrawGraph(t)
	if err != nil {
		return err
	}

	format, ok := graphFormats[graphFormat]
	if !ok {
		format = graphviz.SVG
	}
	if err := os.MkdirAll(path.Dir(graphOutFile), 0o755); err != nil {
		return err
	}
	return gv.RenderFilename(graph, format, graphOutFile)
}
