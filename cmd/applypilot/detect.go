package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwilhelm/applypilot/internal/cli"
	"github.com/mwilhelm/applypilot/internal/observability"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Check whether the configured AI CLI tool is installed",
	RunE:  runDetect,
}

var detectTool string

func init() {
	detectCmd.Flags().StringVar(&detectTool, "tool", "gemini", "CLI tool binary name to probe for")

	rootCmd.AddCommand(detectCmd)
}

func runDetect(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	detector := cli.NewDetector(cli.NewProcessInvoker())
	path, found := detector.Detect(ctx, detectTool)

	observability.NewPrinter(os.Stdout).PrintDetection(detectTool, path, found)

	if !found {
		return fmt.Errorf("%q not found on PATH or in known install locations", detectTool)
	}
	return nil
}
