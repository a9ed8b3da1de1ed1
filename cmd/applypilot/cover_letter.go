package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mwilhelm/applypilot/internal/observability"
	"github.com/mwilhelm/applypilot/internal/tailoring"
	"github.com/mwilhelm/applypilot/internal/types"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter",
	Short: "Generate a cover letter for a job posting",
	Long: `Generate a cover letter grounded in the master resume and a specific job posting.

The posting comes from a text file (--job) or a URL (--job-url). The letter is printed as JSON, or written to --out.`,
	RunE: runCoverLetter,
}

var (
	letterCommon     commonFlags
	letterPrompt     promptFlags
	letterResumePath string
	letterJobPath    string
	letterJobURL     string
	letterCompany    string
	letterInfo       string
	letterOut        string
	letterUseBrowser bool
)

func init() {
	letterCommon.register(coverLetterCmd)
	letterPrompt.register(coverLetterCmd, true)

	coverLetterCmd.Flags().StringVarP(&letterResumePath, "resume", "r", "", "Path to master resume JSON file (required)")
	coverLetterCmd.Flags().StringVarP(&letterJobPath, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	coverLetterCmd.Flags().StringVar(&letterJobURL, "job-url", "", "URL to fetch the job posting from (mutually exclusive with --job)")
	coverLetterCmd.Flags().StringVarP(&letterCompany, "company", "c", "", "Company name the letter is addressed to (required)")
	coverLetterCmd.Flags().StringVar(&letterInfo, "company-info", "", "Extra company background to draw on")
	coverLetterCmd.Flags().StringVarP(&letterOut, "out", "o", "", "Write the cover letter JSON to this file instead of stdout")
	coverLetterCmd.Flags().BoolVar(&letterUseBrowser, "use-browser", false, "Use a headless browser for client-rendered job pages")

	_ = coverLetterCmd.MarkFlagRequired("resume")
	_ = coverLetterCmd.MarkFlagRequired("company")

	rootCmd.AddCommand(coverLetterCmd)
}

func runCoverLetter(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := letterCommon.resolve(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = letterUseBrowser
	}

	overrides, err := letterPrompt.overrides(cmd)
	if err != nil {
		return err
	}

	resume, err := loadResume(letterResumePath)
	if err != nil {
		return err
	}

	job, err := ingestJob(ctx, cfg.UseBrowser, cfg.Verbose, letterJobPath, letterJobURL)
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

	outcome, err := orch.CoverLetter(ctx, uuid.New(), types.CoverLetterRequest{
		Resume:      resume,
		JobText:     job.Text,
		CompanyName: letterCompany,
		CompanyInfo: letterInfo,
		Overrides:   overrides,
	})
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printer.PrintCoverLetter(outcome.Letter)
	}
	printer.PrintOutcome(tailoring.KindCoverLetter, outcome.Attempts, outcome.Elapsed)

	return writeResult(letterOut, outcome.Letter)
}
