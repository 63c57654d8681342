package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/repo-scout/internal/search"
	"github.com/jonathan/repo-scout/internal/types"
	"github.com/spf13/cobra"
)

var buildQueriesCmd = &cobra.Command{
	Use:   "build-queries",
	Short: "Build search queries from a requirement profile",
	Long:  "Deterministically derives GitHub search queries from a RequirementProfile JSON, optionally refined by an AnswerSet JSON with the user's clarifying-question answers.",
	RunE:  runBuildQueries,
}

var (
	buildQueriesProfile string
	buildQueriesAnswers string
	buildQueriesOutput  string
)

// querySet is the JSON artifact written between the build-queries and
// search steps.
type querySet struct {
	Queries []string `json:"queries"`
}

func init() {
	buildQueriesCmd.Flags().StringVarP(&buildQueriesProfile, "profile", "p", "", "Path to input RequirementProfile JSON file (required)")
	buildQueriesCmd.Flags().StringVarP(&buildQueriesAnswers, "answers", "a", "", "Path to input AnswerSet JSON file (optional)")
	buildQueriesCmd.Flags().StringVarP(&buildQueriesOutput, "out", "o", "", "Path to output query set JSON file (required)")

	if err := buildQueriesCmd.MarkFlagRequired("profile"); err != nil {
		panic(fmt.Sprintf("failed to mark profile flag as required: %v", err))
	}
	if err := buildQueriesCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(buildQueriesCmd)
}

func runBuildQueries(_ *cobra.Command, _ []string) error {
	// 1. Load RequirementProfile
	profileContent, err := os.ReadFile(buildQueriesProfile)
	if err != nil {
		return fmt.Errorf("failed to read profile file %s: %w", buildQueriesProfile, err)
	}

	var profile types.RequirementProfile
	if err := json.Unmarshal(profileContent, &profile); err != nil {
		return fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}

	// 2. Load AnswerSet if provided
	var answers *types.AnswerSet
	if buildQueriesAnswers != "" {
		answersContent, err := os.ReadFile(buildQueriesAnswers)
		if err != nil {
			return fmt.Errorf("failed to read answers file %s: %w", buildQueriesAnswers, err)
		}
		answers = &types.AnswerSet{}
		if err := json.Unmarshal(answersContent, answers); err != nil {
			return fmt.Errorf("failed to unmarshal answers JSON: %w", err)
		}
	}

	// 3. Build queries
	queries := search.BuildQueries(&profile, answers)

	// 4. Marshal to JSON with indentation
	jsonOutput, err := json.MarshalIndent(querySet{Queries: queries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queries to JSON: %w", err)
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(buildQueriesOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	// 5. Write to output file
	if err := os.WriteFile(buildQueriesOutput, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write queries to output file %s: %w", buildQueriesOutput, err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully built %d search queries to %s\n", len(queries), buildQueriesOutput)

	return nil
}
