package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwilhelm/applypilot/internal/llm"
	"github.com/mwilhelm/applypilot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP daemon",
	Long: `Run the local HTTP daemon that backs the browser extension and other clients.

Operations are accepted over HTTP, progress streams over Server-Sent Events, and history is persisted when a database is configured. Without APPLYPILOT_UNLOCK_HASH the daemon trusts local callers and skips authentication.`,
	RunE: runServe,
}

var (
	serveCommon     commonFlags
	serveListenAddr string
	serveDBURL      string
	serveUseBrowser bool
)

func init() {
	serveCommon.register(serveCmd)

	serveCmd.Flags().StringVarP(&serveListenAddr, "listen", "l", "", "Listen address (default: 127.0.0.1:8489)")
	serveCmd.Flags().StringVar(&serveDBURL, "db-url", "", "PostgreSQL connection string (default: DATABASE_URL)")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Use a headless browser for client-rendered job pages")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := serveCommon.resolve(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = serveListenAddr
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDBURL
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = serveUseBrowser
	}
	if cfg.UnlockHash == "" {
		cfg.UnlockHash = os.Getenv("APPLYPILOT_UNLOCK_HASH")
	}
	if cfg.SettingsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to locate home directory for settings store: %w", err)
		}
		cfg.SettingsPath = filepath.Join(home, ".applypilot", "settings.json")
	}

	apiKeyEnv := cfg.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = "GEMINI_API_KEY"
	}

	srv, err := server.New(ctx, server.Config{
		ListenAddr:  cfg.ListenAddr,
		DatabaseURL: cfg.DatabaseURL,
		UnlockHash:  cfg.UnlockHash,
		Provider: &llm.Config{
			Backend:   llm.Backend(cfg.Backend),
			Tool:      cfg.Tool,
			ExtraArgs: cfg.ToolArgs,
			Model:     cfg.Model,
			APIKey:    os.Getenv(apiKeyEnv),
		},
		MaxRetries:     cfg.MaxRetries,
		AttemptTimeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		KeepMarkdown:   cfg.KeepMarkdown,
		SettingsPath:   cfg.SettingsPath,
		UseBrowser:     cfg.UseBrowser,
		Verbose:        cfg.Verbose,
	})
	if err != nil {
		return err
	}

	return srv.Start()
}
