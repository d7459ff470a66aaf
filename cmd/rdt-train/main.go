package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("rdt-train: %v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rdt-train",
	Short: "Train and run randomized decision tree body-part classifiers",
}

func init() {
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(graphCmd)
}
