package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mwilhelm/applypilot/internal/ingestion"
	"github.com/mwilhelm/applypilot/internal/observability"
	"github.com/mwilhelm/applypilot/internal/tailoring"
	"github.com/mwilhelm/applypilot/internal/types"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Tailor the master resume to a job posting",
	Long: `Tailor the master resume to a specific job posting using the configured AI backend.

The posting comes from a text file (--job) or a URL (--job-url). The refined resume is printed as JSON, or written to --out.`,
	RunE: runRefine,
}

var (
	refineCommon     commonFlags
	refinePrompt     promptFlags
	refineResumePath string
	refineJobPath    string
	refineJobURL     string
	refineOut        string
	refineUseBrowser bool
)

func init() {
	refineCommon.register(refineCmd)
	refinePrompt.register(refineCmd, false)

	refineCmd.Flags().StringVarP(&refineResumePath, "resume", "r", "", "Path to master resume JSON file (required)")
	refineCmd.Flags().StringVarP(&refineJobPath, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	refineCmd.Flags().StringVar(&refineJobURL, "job-url", "", "URL to fetch the job posting from (mutually exclusive with --job)")
	refineCmd.Flags().StringVarP(&refineOut, "out", "o", "", "Write the refined resume JSON to this file instead of stdout")
	refineCmd.Flags().BoolVar(&refineUseBrowser, "use-browser", false, "Use a headless browser for client-rendered job pages")

	_ = refineCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := refineCommon.resolve(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = refineUseBrowser
	}

	overrides, err := refinePrompt.overrides(cmd)
	if err != nil {
		return err
	}

	resume, err := loadResume(refineResumePath)
	if err != nil {
		return err
	}

	job, err := ingestJob(ctx, cfg.UseBrowser, cfg.Verbose, refineJobPath, refineJobURL)
	if err != nil {
		return err
	}

	provider, _, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	printer := observability.NewPrinter(os.Stderr)
	orch, err := buildOrchestrator(provider, cfg, tailoring.SinkFunc(printer.PrintProgress))
	if err != nil {
		return err
	}

	outcome, err := orch.Refine(ctx, uuid.New(), types.RefineRequest{
		Resume:    resume,
		JobText:   job.Text,
		Overrides: overrides,
	})
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printer.PrintRefinedResume(outcome.Resume)
	}
	printer.PrintOutcome(tailoring.KindRefine, outcome.Attempts, outcome.Elapsed)

	return writeResult(refineOut, outcome.Resume)
}

// ingestJob produces clean posting text from a file or URL. Exactly one
// source must be given.
func ingestJob(ctx context.Context, useBrowser, verbose bool, jobPath, jobURL string) (*ingestion.Result, error) {
	if jobPath == "" && jobURL == "" {
		return nil, fmt.Errorf("either --job or --job-url must be provided")
	}
	if jobPath != "" && jobURL != "" {
		return nil, fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}

	ingestor := ingestion.New(nil, ingestion.Options{UseBrowser: useBrowser, Verbose: verbose})
	if jobPath != "" {
		return ingestor.FromFile(jobPath)
	}
	return ingestor.FromURL(ctx, jobURL)
}
