package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/repo-scout/internal/github"
	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/observability"
	"github.com/jonathan/repo-scout/internal/report"
	"github.com/jonathan/repo-scout/internal/schemas"
	"github.com/jonathan/repo-scout/internal/types"
	"github.com/spf13/cobra"
)

var detailCmd = &cobra.Command{
	Use:   "detail",
	Short: "Produce a detailed fit report for one repository",
	Long:  "Fetches metadata, contributor count, and README for a single repository, classifies its maintenance health, and generates a model-written analysis of how well it fits the requirement profile.",
	RunE:  runDetail,
}

var (
	detailProfile     string
	detailRepo        string
	detailOutput      string
	detailAPIKey      string
	detailGitHubToken string
	detailCallTimeout int
)

func init() {
	detailCmd.Flags().StringVarP(&detailProfile, "profile", "p", "", "Path to input RequirementProfile JSON file (required)")
	detailCmd.Flags().StringVarP(&detailRepo, "repo", "r", "", "Repository to analyze as owner/name (required)")
	detailCmd.Flags().StringVarP(&detailOutput, "out", "o", "", "Path to output RepositoryDetail JSON file (optional)")
	detailCmd.Flags().StringVar(&detailAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	detailCmd.Flags().StringVar(&detailGitHubToken, "github-token", "", "GitHub token for authenticated requests (overrides GITHUB_TOKEN env var)")
	detailCmd.Flags().IntVar(&detailCallTimeout, "call-timeout", 30, "Per-model-call timeout in seconds")

	if err := detailCmd.MarkFlagRequired("profile"); err != nil {
		panic(fmt.Sprintf("failed to mark profile flag as required: %v", err))
	}
	if err := detailCmd.MarkFlagRequired("repo"); err != nil {
		panic(fmt.Sprintf("failed to mark repo flag as required: %v", err))
	}

	rootCmd.AddCommand(detailCmd)
}

func runDetail(_ *cobra.Command, _ []string) error {
	parts := strings.SplitN(detailRepo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("--repo must be in owner/name format, got %q", detailRepo)
	}
	owner, name := parts[0], parts[1]

	apiKey := detailAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	token := detailGitHubToken
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	// Load RequirementProfile
	profileContent, err := os.ReadFile(detailProfile)
	if err != nil {
		return fmt.Errorf("failed to read profile file %s: %w", detailProfile, err)
	}

	var profile types.RequirementProfile
	if err := json.Unmarshal(profileContent, &profile); err != nil {
		return fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}

	ctx := context.Background()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close()

	analyzer := report.NewAnalyzer(github.NewClient(token), client, time.Duration(detailCallTimeout)*time.Second)
	detail, err := analyzer.AnalyzeRepository(ctx, owner, name, &profile)
	if err != nil {
		return fmt.Errorf("failed to analyze repository %s/%s: %w", owner, name, err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintRepositoryDetail(detail)

	if detailOutput == "" {
		return nil
	}

	jsonOutput, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal repository detail to JSON: %w", err)
	}

	outputDir := filepath.Dir(detailOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(detailOutput, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write repository detail to output file %s: %w", detailOutput, err)
	}

	// Validate output against schema (optional - non-fatal)
	schemaPath := schemas.ResolveSchemaPath("schemas/repository_detail.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, detailOutput); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Output validation failed: %v\n", err)
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", detailOutput)

	return nil
}
