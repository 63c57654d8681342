package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/repo-scout/internal/config"
	"github.com/jonathan/repo-scout/internal/github"
	"github.com/jonathan/repo-scout/internal/ingestion"
	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/pipeline"
	"github.com/jonathan/repo-scout/internal/schemas"
	"github.com/jonathan/repo-scout/internal/types"
	"github.com/spf13/cobra"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full repository scouting pipeline end-to-end",
	Long: `Orchestrates the entire scouting process: ingestion -> analysis -> query building -> search -> ranking.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath  string
	runSOW         string
	runSOWURL      string
	runFormat      string
	runAnswers     string
	runOutput      string
	runMinStars    int
	runLimit       int
	runAPIKey      string
	runGitHubToken string
	runCallTimeout int
	runUseBrowser  bool
	runVerbose     bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runSOW, "sow", "s", "", "Path to statement-of-work document (mutually exclusive with --sow-url)")
	runCommand.Flags().StringVar(&runSOWURL, "sow-url", "", "URL to fetch the statement of work from (mutually exclusive with --sow)")
	runCommand.Flags().StringVar(&runFormat, "format", "", "Document format override: pdf, html, or txt")
	runCommand.Flags().StringVarP(&runAnswers, "answers", "a", "", "Path to AnswerSet JSON file with clarifying-question answers")
	runCommand.Flags().StringVarP(&runOutput, "out", "o", "", "Path to write the RankedRepositories JSON output (optional)")
	runCommand.Flags().IntVar(&runMinStars, "min-stars", 0, "Minimum star qualifier for repository search")
	runCommand.Flags().IntVar(&runLimit, "limit", 0, "Maximum results requested per search query")
	runCommand.Flags().IntVar(&runCallTimeout, "call-timeout", 0, "Per-model-call timeout in seconds")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// GitHub token for authenticated search
	runCommand.Flags().StringVar(&runGitHubToken, "github-token", "", "GitHub token (optional, defaults to GITHUB_TOKEN env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("sow") {
		cfg.SOW = runSOW
	}
	if cmd.Flags().Changed("sow-url") {
		cfg.SOWURL = runSOWURL
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = runFormat
	}
	if cmd.Flags().Changed("min-stars") {
		cfg.MinStars = runMinStars
	}
	if cmd.Flags().Changed("limit") {
		cfg.PerQueryLimit = runLimit
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("github-token") {
		cfg.GitHubToken = runGitHubToken
	}
	if cmd.Flags().Changed("call-timeout") {
		cfg.CallTimeoutSeconds = runCallTimeout
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		MinStars:           50,
		PerQueryLimit:      5,
		CallTimeoutSeconds: 30,
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Validate required fields
	if cfg.SOW == "" && cfg.SOWURL == "" {
		return fmt.Errorf("either --sow or --sow-url must be provided (via flag or config)")
	}
	if cfg.SOW != "" && cfg.SOWURL != "" {
		return fmt.Errorf("--sow and --sow-url are mutually exclusive; provide only one")
	}

	// Step 5: API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Step 6: GitHub token handling (optional; unauthenticated search has
	// tighter rate limits)
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}

	// Step 7: Load answers file if provided
	var answers *types.AnswerSet
	if runAnswers != "" {
		answersContent, err := os.ReadFile(runAnswers)
		if err != nil {
			return fmt.Errorf("failed to read answers file %s: %w", runAnswers, err)
		}
		answers = &types.AnswerSet{}
		if err := json.Unmarshal(answersContent, answers); err != nil {
			return fmt.Errorf("failed to unmarshal answers JSON: %w", err)
		}
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close()

	run := pipeline.NewRun()
	opts := pipeline.RunOptions{
		SOWPath:       cfg.SOW,
		SOWURL:        cfg.SOWURL,
		Format:        ingestion.Format(cfg.Format),
		Answers:       answers,
		MinStars:      cfg.MinStars,
		PerQueryLimit: cfg.PerQueryLimit,
		CallTimeout:   time.Duration(cfg.CallTimeoutSeconds) * time.Second,
		UseBrowser:    cfg.UseBrowser,
		Verbose:       cfg.Verbose,
	}

	if err := pipeline.RunPipeline(ctx, run, opts, client, github.NewClient(cfg.GitHubToken)); err != nil {
		return err
	}

	if runOutput == "" {
		return nil
	}

	jsonOutput, err := json.MarshalIndent(run.Results(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ranked repositories to JSON: %w", err)
	}

	outputDir := filepath.Dir(runOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(runOutput, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write ranked repositories to output file %s: %w", runOutput, err)
	}

	// Validate output against schema (optional - non-fatal)
	schemaPath := schemas.ResolveSchemaPath("schemas/ranked_repositories.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, runOutput); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Output validation failed: %v\n", err)
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", runOutput)

	return nil
}
