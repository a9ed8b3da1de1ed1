package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwilhelm/applypilot/internal/cli"
	appconfig "github.com/mwilhelm/applypilot/internal/config"
	"github.com/mwilhelm/applypilot/internal/llm"
	"github.com/mwilhelm/applypilot/internal/sanitize"
	"github.com/mwilhelm/applypilot/internal/tailoring"
	"github.com/mwilhelm/applypilot/internal/types"
)

// commonFlags are shared by every command that talks to the AI backend.
// Resolution order: built-in defaults < config file < explicitly set flags.
type commonFlags struct {
	configPath     string
	backend        string
	tool           string
	model          string
	apiKeyEnv      string
	maxRetries     int
	timeoutSeconds int
	keepMarkdown   bool
	settingsPath   string
	verbose        bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&f.backend, "backend", "", `AI backend: "cli" (default) or "gemini"`)
	cmd.Flags().StringVar(&f.tool, "tool", "", "CLI tool binary name (default: gemini)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name for the gemini backend")
	cmd.Flags().StringVar(&f.apiKeyEnv, "api-key-env", "", "Env var holding the API key (default: GEMINI_API_KEY)")
	cmd.Flags().IntVar(&f.maxRetries, "retries", 0, "Extra attempts after a validation failure")
	cmd.Flags().IntVar(&f.timeoutSeconds, "timeout", 0, "Per-attempt timeout in seconds")
	cmd.Flags().BoolVar(&f.keepMarkdown, "keep-markdown", false, "Keep markdown syntax in generated text")
	cmd.Flags().StringVar(&f.settingsPath, "settings", "", "Path to the prompt defaults settings file")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolve loads the config file (when given), overlays explicitly set flags,
// and fills remaining gaps with defaults.
func (f *commonFlags) resolve(cmd *cobra.Command) (appconfig.Config, error) {
	var cfg appconfig.Config
	if f.configPath != "" {
		loaded, err := appconfig.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		if f.verbose {
			fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", f.configPath)
		}
	}

	if cmd.Flags().Changed("backend") {
		cfg.Backend = f.backend
	}
	if cmd.Flags().Changed("tool") {
		cfg.Tool = f.tool
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = f.model
	}
	if cmd.Flags().Changed("api-key-env") {
		cfg.APIKeyEnv = f.apiKeyEnv
	}
	if cmd.Flags().Changed("retries") {
		cfg.MaxRetries = f.maxRetries
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSeconds = f.timeoutSeconds
	}
	if cmd.Flags().Changed("keep-markdown") {
		cfg.KeepMarkdown = f.keepMarkdown
	}
	if cmd.Flags().Changed("settings") {
		cfg.SettingsPath = f.settingsPath
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg = cfg.MergeWithDefaults(appconfig.Config{
		Backend: "cli",
		Tool:    "gemini",
		Model:   "gemini-2.5-flash",
	})
	return cfg, nil
}

// buildProvider creates the configured AI backend plus the detector used
// for availability reporting.
func buildProvider(ctx context.Context, cfg appconfig.Config) (llm.Provider, *cli.Detector, error) {
	invoker := cli.NewProcessInvoker()
	detector := cli.NewDetector(invoker)

	apiKeyEnv := cfg.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = "GEMINI_API_KEY"
	}

	provider, err := llm.New(ctx, &llm.Config{
		Backend:   llm.Backend(cfg.Backend),
		Tool:      cfg.Tool,
		ExtraArgs: cfg.ToolArgs,
		Model:     cfg.Model,
		APIKey:    os.Getenv(apiKeyEnv),
	}, invoker, detector)
	if err != nil {
		return nil, nil, err
	}
	return provider, detector, nil
}

// buildOrchestrator assembles the operation core for one-shot CLI use.
// Prompt defaults come from the settings file when one is configured.
func buildOrchestrator(provider llm.Provider, cfg appconfig.Config, sinks ...tailoring.ProgressSink) (*tailoring.Orchestrator, error) {
	opts := tailoring.Options{
		MaxRetries:     cfg.MaxRetries,
		AttemptTimeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		Sanitize:       sanitize.Options{StripMarkdown: !cfg.KeepMarkdown},
		Sinks:          sinks,
	}
	if cfg.SettingsPath != "" {
		store, err := appconfig.NewSettingsStore(cfg.SettingsPath)
		if err != nil {
			return nil, err
		}
		opts.BaseOptions = store.PromptDefaults
	}
	return tailoring.New(provider, opts), nil
}

// promptFlags expose the per-call prompt option overrides. Only flags the
// user explicitly set become overrides; everything else falls through to the
// settings-derived defaults.
type promptFlags struct {
	tone             string
	style            string
	maxSummaryChars  int
	maxHighlights    int
	maxParagraphs    int
	focusAreas       []string
	instructions     string
	preserveAll      bool
	noMetadata       bool
	emphasizeCompany bool
}

func (p *promptFlags) register(cmd *cobra.Command, forLetter bool) {
	cmd.Flags().StringVar(&p.tone, "tone", "", "Tone: professional, enthusiastic, confident, or concise")
	cmd.Flags().StringVar(&p.style, "style", "", "Style: traditional, modern, or creative")
	cmd.Flags().IntVar(&p.maxSummaryChars, "max-summary-chars", 0, "Maximum summary length in characters")
	cmd.Flags().IntVar(&p.maxHighlights, "max-highlights", 0, "Maximum highlights per work experience entry")
	cmd.Flags().StringSliceVar(&p.focusAreas, "focus", nil, "Focus areas to emphasize (repeatable)")
	cmd.Flags().StringVar(&p.instructions, "instructions", "", "Free-text custom instructions for the model")
	cmd.Flags().BoolVar(&p.preserveAll, "preserve-all-content", false, "Keep every resume entry instead of trimming")
	cmd.Flags().BoolVar(&p.noMetadata, "no-metadata", false, "Omit refinement metadata from the output")
	if forLetter {
		cmd.Flags().IntVar(&p.maxParagraphs, "max-paragraphs", 0, "Maximum body paragraphs in the letter")
		cmd.Flags().BoolVar(&p.emphasizeCompany, "emphasize-company", false, "Lean on the supplied company info")
	}
}

func (p *promptFlags) overrides(cmd *cobra.Command) (*types.PromptOverrides, error) {
	o := &types.PromptOverrides{FocusAreas: p.focusAreas}
	if cmd.Flags().Changed("tone") {
		tone := types.Tone(p.tone)
		if !types.ValidTone(tone) {
			return nil, fmt.Errorf("invalid tone %q: must be professional, enthusiastic, confident, or concise", p.tone)
		}
		o.Tone = &tone
	}
	if cmd.Flags().Changed("style") {
		style := types.Style(p.style)
		if !types.ValidStyle(style) {
			return nil, fmt.Errorf("invalid style %q: must be traditional, modern, or creative", p.style)
		}
		o.Style = &style
	}
	if cmd.Flags().Changed("max-summary-chars") {
		o.MaxSummaryChars = &p.maxSummaryChars
	}
	if cmd.Flags().Changed("max-highlights") {
		o.MaxHighlightsPerJob = &p.maxHighlights
	}
	if cmd.Flags().Lookup("max-paragraphs") != nil && cmd.Flags().Changed("max-paragraphs") {
		o.MaxBodyParagraphs = &p.maxParagraphs
	}
	if cmd.Flags().Changed("instructions") {
		o.CustomInstructions = &p.instructions
	}
	if cmd.Flags().Changed("preserve-all-content") {
		o.PreserveAllContent = &p.preserveAll
	}
	if cmd.Flags().Changed("no-metadata") {
		include := !p.noMetadata
		o.IncludeMetadata = &include
	}
	if cmd.Flags().Lookup("emphasize-company") != nil && cmd.Flags().Changed("emphasize-company") {
		o.EmphasizeCompanyKnowledge = &p.emphasizeCompany
	}
	return o, nil
}

// loadResume reads a master resume from a JSON file.
func loadResume(path string) (types.Resume, error) {
	var resume types.Resume

	data, err := os.ReadFile(path)
	if err != nil {
		return resume, fmt.Errorf("failed to read resume file: %w", err)
	}
	if err := json.Unmarshal(data, &resume); err != nil {
		return resume, fmt.Errorf("failed to parse resume JSON: %w", err)
	}
	if resume.PersonalInfo.Name == "" {
		return resume, fmt.Errorf("resume personal info must include a name")
	}
	return resume, nil
}

// writeResult writes v as indented JSON to path, or to stdout when path is
// empty.
func writeResult(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
