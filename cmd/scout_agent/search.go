package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/repo-scout/internal/github"
	"github.com/jonathan/repo-scout/internal/search"
	"github.com/jonathan/repo-scout/internal/types"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search GitHub for candidate repositories",
	Long:  "Runs a query set against GitHub repository search, deduplicates the results across queries, and writes the candidate list as JSON. Queries that fail are skipped rather than aborting the search.",
	RunE:  runSearch,
}

var (
	searchQueriesFile string
	searchOutput      string
	searchMinStars    int
	searchLimit       int
	searchGitHubToken string
)

// candidateSet is the JSON artifact written between the search and rank
// steps.
type candidateSet struct {
	Candidates []types.CandidateRepository `json:"candidates"`
}

func init() {
	searchCmd.Flags().StringVarP(&searchQueriesFile, "queries", "q", "", "Path to input query set JSON file (required)")
	searchCmd.Flags().StringVarP(&searchOutput, "out", "o", "", "Path to output candidate set JSON file (required)")
	searchCmd.Flags().IntVar(&searchMinStars, "min-stars", 50, "Minimum star qualifier for repository search")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results requested per query")
	searchCmd.Flags().StringVar(&searchGitHubToken, "github-token", "", "GitHub token for authenticated search (overrides GITHUB_TOKEN env var)")

	if err := searchCmd.MarkFlagRequired("queries"); err != nil {
		panic(fmt.Sprintf("failed to mark queries flag as required: %v", err))
	}
	if err := searchCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(searchCmd)
}

func runSearch(_ *cobra.Command, _ []string) error {
	// 1. Load query set
	queriesContent, err := os.ReadFile(searchQueriesFile)
	if err != nil {
		return fmt.Errorf("failed to read queries file %s: %w", searchQueriesFile, err)
	}

	var queries querySet
	if err := json.Unmarshal(queriesContent, &queries); err != nil {
		return fmt.Errorf("failed to unmarshal queries JSON: %w", err)
	}
	if len(queries.Queries) == 0 {
		return fmt.Errorf("query set is empty")
	}

	// Unauthenticated search works but with tighter GitHub rate limits
	token := searchGitHubToken
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	// 2. Search
	gateway := github.NewClient(token)
	searcher := search.NewSearcher(gateway, searchMinStars, searchLimit)
	candidates := searcher.FindCandidates(context.Background(), queries.Queries)

	// 3. Marshal to JSON with indentation
	jsonOutput, err := json.MarshalIndent(candidateSet{Candidates: candidates}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal candidates to JSON: %w", err)
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(searchOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	// 4. Write to output file
	if err := os.WriteFile(searchOutput, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write candidates to output file %s: %w", searchOutput, err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully found %d candidate repositories to %s\n", len(candidates), searchOutput)

	return nil
}
