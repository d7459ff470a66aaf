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

var (
	resumeCfg      rdt.Config
	resumeInFile   string
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume training from a checkpointed tree",
	RunE:  runResume,
}

func init() {
	def := rdt.DefaultConfig()
	flags := resumeCmd.Flags()
	flags.StringVar(&resumeCfg.DataDir, "data-dir", "", "directory containing the corpus (required)")
	flags.StringVar(&resumeCfg.IndexName, "index-name", "", "corpus index manifest name, without extension (required)")
	flags.StringVar(&resumeCfg.OutFile, "out-file", "", "path to write the resumed tree to (required)")
	flags.StringVar(&resumeInFile, "in-file", "", "checkpointed tree to resume from (required)")
	flags.IntVar(&resumeCfg.NPixels, "n-pixels", def.NPixels, "pixels sampled per training image")
	flags.IntVar(&resumeCfg.NThresholds, "n-thresholds", def.NThresholds, "thresholds evaluated per uv candidate")
	flags.Float32Var(&resumeCfg.ThresholdRange, "threshold-range", def.ThresholdRange, "span of threshold candidates, in meters")
	flags.IntVar(&resumeCfg.NUV, "n-uv", def.NUV, "uv offset candidates per node")
	flags.Float32Var(&resumeCfg.UVRange, "uv-range", def.UVRange, "span of uv offset candidates, in meters")
	flags.IntVar(&resumeCfg.MaxDepth, "max-depth", def.MaxDepth, "maximum tree depth, may exceed the checkpoint's")
	flags.Int64Var(&resumeCfg.Seed, "seed", def.Seed, "PRNG seed, must match the checkpoint's original run")
	flags.BoolVar(&resumeCfg.Verbose, "verbose", def.Verbose, "log per-node split decisions")
	flags.IntVar(&resumeCfg.NThreads, "n-threads", def.NThreads, "worker pool size")
	flags.Float32Var(&resumeCfg.BgDepth, "bg-depth", def.BgDepth, "depth substituted for probes that land outside the frame")

	cobra.CheckErr(resumeCmd.MarkFlagRequired("data-dir"))
	cobra.CheckErr(resumeCmd.MarkFlagRequired("index-name"))
	cobra.CheckErr(resumeCmd.MarkFlagRequired("out-file"))
	cobra.CheckErr(resumeCmd.MarkFlagRequired("in-file"))
}

func runResume(cmd *cobra.Command, args []string) error {
	logger := rdtlog.New(resumeCfg.Verbose)

	corpus, err := rdt.OpenNpyCorpus(afero.NewOsFs(), resumeCfg.DataDir, resumeCfg.IndexName)
	if err != nil {
		return err
	}
	trainer, err := rdt.NewTrainer(resumeCfg, corpus, logger)
	if err != nil {
		return err
	}

	checkpointFile, err := os.Open(resumeInFile)
	if err != nil {
		return err
	}
	checkpoint, err := persist.ReadBinary(checkpointFile)
	checkpointFile.Close()
	if err != nil {
		return err
	}
	logger.Printf("loaded checkpoint with %s leaf probability tables", humanize.Comma(int64(len(checkpoint.ProbTables))))

	if err := trainer.Resume(checkpoint); err != nil {
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
	if err := os.WriteFile(resumeCfg.OutFile, encoded, 0644); err != nil {
		return err
	}
	logger.Printf("wrote %s tree to %s", humanize.Bytes(uint64(len(encoded))), resumeCfg.OutFile)
	return nil
}
