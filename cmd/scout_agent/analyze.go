package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/repo-scout/internal/analysis"
	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/observability"
	"github.com/jonathan/repo-scout/internal/schemas"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a cleaned statement of work into a RequirementProfile JSON",
	Long:  "Analyze a cleaned statement-of-work text file into a structured RequirementProfile JSON that validates against the requirement_profile schema. Clarifying questions, if any, are printed for the user to answer.",
	RunE:  runAnalyze,
}

var (
	analyzeInputFile  string
	analyzeOutputFile string
	analyzeAPIKey     string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInputFile, "in", "i", "", "Path to cleaned text file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFile, "out", "o", "", "Path to output JSON file (required)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")

	if err := analyzeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := analyzeCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	apiKey := analyzeAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	inputContent, err := os.ReadFile(analyzeInputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	ctx := context.Background()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close()

	profile, err := analysis.AnalyzeRequirements(ctx, string(inputContent), client)
	if err != nil {
		return fmt.Errorf("failed to analyze requirements: %w", err)
	}

	// Marshal to JSON with indentation
	jsonBytes, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	outputDir := filepath.Dir(analyzeOutputFile)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(analyzeOutputFile, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	// Validate against schema (if schema file exists)
	schemaPath := schemas.ResolveSchemaPath("schemas/requirement_profile.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, analyzeOutputFile); err != nil {
			// Distinguish between validation errors (data doesn't match schema) and schema load errors
			var validationErr *schemas.ValidationError
			var schemaLoadErr *schemas.SchemaLoadError
			if errors.As(err, &validationErr) {
				return fmt.Errorf("generated JSON does not validate against schema: %w", err)
			} else if errors.As(err, &schemaLoadErr) {
				_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate output against schema (schema loading failed): %v\n", err)
			} else {
				_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate output against schema: %v\n", err)
			}
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully analyzed requirements\n")
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", analyzeOutputFile)

	// Surface clarifying questions so the user can prepare an answers file
	// for build-queries
	if len(profile.ClarifyingQuestions) > 0 {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintClarifyingQuestions(profile.ClarifyingQuestions)
	}

	return nil
}
