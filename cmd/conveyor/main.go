package main

import (
	"os"

	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "conveyor",
	Short: "Event-triggered sequential CI job runner",
	Long: `conveyor turns repository events into single sequential job runs.
A workflow file declares the trigger (push / pull_request branch filters),
the runtimes to provision, and the steps to execute; conveyor runs the
steps strictly in order and stops on the first failure.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(runCmd, validateCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
