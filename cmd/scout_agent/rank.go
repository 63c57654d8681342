package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/ranking"
	"github.com/jonathan/repo-scout/internal/schemas"
	"github.com/jonathan/repo-scout/internal/types"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidate repositories by requirement coverage",
	Long:  "Scores each candidate repository against the requirement profile using the model, producing a RankedRepositories JSON sorted by coverage percentage. Candidates whose coverage cannot be assessed are excluded from the ranking.",
	RunE:  runRank,
}

var (
	rankProfile     string
	rankCandidates  string
	rankOutput      string
	rankAPIKey      string
	rankCallTimeout int
)

func init() {
	rankCmd.Flags().StringVarP(&rankProfile, "profile", "p", "", "Path to input RequirementProfile JSON file (required)")
	rankCmd.Flags().StringVarP(&rankCandidates, "candidates", "c", "", "Path to input candidate set JSON file (required)")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Path to output RankedRepositories JSON file (required)")
	rankCmd.Flags().StringVar(&rankAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	rankCmd.Flags().IntVar(&rankCallTimeout, "call-timeout", 30, "Per-model-call timeout in seconds")

	if err := rankCmd.MarkFlagRequired("profile"); err != nil {
		panic(fmt.Sprintf("failed to mark profile flag as required: %v", err))
	}
	if err := rankCmd.MarkFlagRequired("candidates"); err != nil {
		panic(fmt.Sprintf("failed to mark candidates flag as required: %v", err))
	}
	if err := rankCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRank(_ *cobra.Command, _ []string) error {
	apiKey := rankAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	// 1. Load RequirementProfile
	profileContent, err := os.ReadFile(rankProfile)
	if err != nil {
		return fmt.Errorf("failed to read profile file %s: %w", rankProfile, err)
	}

	var profile types.RequirementProfile
	if err := json.Unmarshal(profileContent, &profile); err != nil {
		return fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}

	// 2. Load candidate set
	candidatesContent, err := os.ReadFile(rankCandidates)
	if err != nil {
		return fmt.Errorf("failed to read candidates file %s: %w", rankCandidates, err)
	}

	var candidates candidateSet
	if err := json.Unmarshal(candidatesContent, &candidates); err != nil {
		return fmt.Errorf("failed to unmarshal candidates JSON: %w", err)
	}

	ctx := context.Background()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close()

	// 3. Rank by coverage
	ranker := ranking.NewRanker(client, time.Duration(rankCallTimeout)*time.Second)
	ranked := ranker.RankByCoverage(ctx, candidates.Candidates, &profile)

	// 4. Marshal to JSON with indentation
	jsonOutput, err := json.MarshalIndent(ranked, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ranked repositories to JSON: %w", err)
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(rankOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	// 5. Write to output file
	if err := os.WriteFile(rankOutput, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write ranked repositories to output file %s: %w", rankOutput, err)
	}

	// 6. Validate output against schema (optional - non-fatal)
	schemaPath := schemas.ResolveSchemaPath("schemas/ranked_repositories.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, rankOutput); err != nil {
			// Output validation is a safety check, not a requirement
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Output validation failed: %v\n", err)
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully ranked %d repositories to %s\n", len(ranked.Repositories), rankOutput)

	return nil
}
