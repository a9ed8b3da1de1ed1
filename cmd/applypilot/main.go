// Package main provides the ApplyPilot command line interface and daemon.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "applypilot",
	Short: "ApplyPilot resume tailoring companion",
	Long:  "ApplyPilot tailors a master resume and cover letter to a specific job posting using a locally installed AI CLI tool (or the Gemini API), tracks generation history, and serves a localhost API for a desktop UI.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
