package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwilhelm/applypilot/internal/db"
	"github.com/mwilhelm/applypilot/internal/fetch"
	"github.com/mwilhelm/applypilot/internal/ingestion"
	"github.com/mwilhelm/applypilot/internal/observability"
)

var ingestJobCmd = &cobra.Command{
	Use:   "ingest-job",
	Short: "Extract clean job posting text from a file or URL",
	Long: `Extract and normalize job posting text without running an AI operation.

With --db-url (or DATABASE_URL), fetched pages are cached so repeated runs against the same URL do not re-download.`,
	RunE: runIngestJob,
}

var (
	ingestFilePath   string
	ingestURL        string
	ingestDBURL      string
	ingestOut        string
	ingestUseBrowser bool
	ingestSkipCache  bool
	ingestVerbose    bool
)

func init() {
	ingestJobCmd.Flags().StringVarP(&ingestFilePath, "file", "f", "", "Path to job posting text file (mutually exclusive with --url)")
	ingestJobCmd.Flags().StringVarP(&ingestURL, "url", "u", "", "URL to fetch the job posting from (mutually exclusive with --file)")
	ingestJobCmd.Flags().StringVar(&ingestDBURL, "db-url", "", "PostgreSQL connection string for the page cache (default: DATABASE_URL)")
	ingestJobCmd.Flags().StringVarP(&ingestOut, "out", "o", "", "Write the ingestion result JSON to this file instead of stdout")
	ingestJobCmd.Flags().BoolVar(&ingestUseBrowser, "use-browser", false, "Use a headless browser for client-rendered job pages")
	ingestJobCmd.Flags().BoolVar(&ingestSkipCache, "skip-cache", false, "Re-fetch even when a fresh cached copy exists")
	ingestJobCmd.Flags().BoolVarP(&ingestVerbose, "verbose", "v", false, "Print a summary of what was extracted")

	rootCmd.AddCommand(ingestJobCmd)
}

func runIngestJob(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if ingestFilePath == "" && ingestURL == "" {
		return fmt.Errorf("either --file or --url must be provided")
	}
	if ingestFilePath != "" && ingestURL != "" {
		return fmt.Errorf("--file and --url are mutually exclusive; provide only one")
	}

	var store fetch.PageStore
	dbURL := ingestDBURL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL != "" && ingestURL != "" {
		database, err := db.Connect(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to page cache: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		store = database
	}

	ingestor := ingestion.New(store, ingestion.Options{
		UseBrowser: ingestUseBrowser,
		SkipCache:  ingestSkipCache,
		Verbose:    ingestVerbose,
	})

	var result *ingestion.Result
	var err error
	if ingestFilePath != "" {
		result, err = ingestor.FromFile(ingestFilePath)
	} else {
		result, err = ingestor.FromURL(ctx, ingestURL)
	}
	if err != nil {
		return err
	}

	if ingestVerbose {
		observability.NewPrinter(os.Stderr).PrintIngest(result)
	}
	return writeResult(ingestOut, result)
}
