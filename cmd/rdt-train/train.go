package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/glimpse-project/glimpse-sdk/internal/rdtlog"
	"github.com/glimpse-project/glimpse-sdk/persist"
	"github.com/glimpse-project/glimpse-sdk/rdt"
)

var trainCfg rdt.Config

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a new randomized decision tree from a corpus",
	RunE:  runTrain,
}

func init() {
	def := rdt.DefaultConfig()
	flags := trainCmd.Flags()
	flags.StringVar(&trainCfg.DataDir, "data-dir", "", "directory containing the corpus (required)")
	flags.StringVar(&trainCfg.IndexName, "index-name", "", "corpus index manifest name, without extension (required)")
	flags.StringVar(&trainCfg.OutFile, "out-file", "", "path to write the trained tree to (required)")
	flags.IntVar(&trainCfg.NPixels, "n-pixels", def.NPixels, "pixels sampled per training image")
	flags.IntVar(&trainCfg.NThresholds, "n-thresholds", def.NThresholds, "thresholds evaluated per uv candidate")
	flags.Float32Var(&trainCfg.ThresholdRange, "threshold-range", def.ThresholdRange, "span of threshold candidates, in meters")
	flags.IntVar(&trainCfg.NUV, "n-uv", def.NUV, "uv offset candidates per node")
	flags.Float32Var(&trainCfg.UVRange, "uv-range", def.UVRange, "span of uv offset candidates, in meters")
	flags.IntVar(&trainCfg.MaxDepth, "max-depth", def.MaxDepth, "maximum tree depth")
	flags.Int64Var(&trainCfg.Seed, "seed", def.Seed, "PRNG seed, for reproducible candidate generation")
	flags.BoolVar(&trainCfg.Verbose, "verbose", def.Verbose, "log per-node split decisions")
	flags.IntVar(&trainCfg.NThreads, "n-threads", def.NThreads, "worker pool size")
	flags.Float32Var(&trainCfg.BgDepth, "bg-depth", def.BgDepth, "depth substituted for probes that land outside the frame")

	cobra.CheckErr(trainCmd.MarkFlagRequired("data-dir"))
	cobra.CheckErr(trainCmd.MarkFlagRequired("index-name"))
	cobra.CheckErr(trainCmd.MarkFlagRequired("out-file"))
}

func runTrain(cmd *cobra.Command, args []string) error {
	logger := rdtlog.New(trainCfg.Verbose)

	corpus, err := rdt.OpenNpyCorpus(afero.NewOsFs(), trainCfg.DataDir, trainCfg.IndexName)
	if err != nil {
		return err
	}

	trainer, err := rdt.NewTrainer(trainCfg, corpus, logger)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	go func() {
		<-sigCh
		logger.Printf("interrupt received, finishing current node and serializing")
		trainer.Cancel()
	}()
	defer signal.Stop(sigCh)

	result, err := trainer.Train()
	if err != nil {
		return err
	}
	if !result.Completed {
		logger.Printf("training interrupted, writing best-effort partial tree")
	}
	logger.Durations.Flush(logger)

	encoded, err := persist.EncodeBinary(result.Tree)
	if err != nil {
		return err
	}
	if err := os.WriteFile(trainCfg.OutFile, encoded, 0644); err != nil {
		return err
	}
	logger.Printf("wrote %s tree (%s sampled pixels per image) to %s",
		humanize.Bytes(uint64(len(encoded))), humanize.Comma(int64(trainCfg.NPixels)), trainCfg.OutFile)
	return nil
}
