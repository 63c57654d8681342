// Package ranking scores candidate repositories against a requirement
// profile and assembles the final coverage ranking.
package ranking

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/prompts"
	"github.com/jonathan/repo-scout/internal/types"
)

// coverageMaxOutputTokens bounds each scoring call. The scorer runs once per
// candidate, so its budget stays well below the single analysis call.
const coverageMaxOutputTokens = 1024

// maxCoverageItems caps the covers and gaps lists.
const maxCoverageItems = 5

// Fixed values substituted when a scoring call fails.
const (
	// FallbackCoveragePercentage is the neutral score for unscoreable candidates
	FallbackCoveragePercentage = 30
	// FallbackCoversMarker marks a coverage list the model did not produce
	FallbackCoversMarker = "General implementation reference"
	// FallbackGapsMarker marks a gaps list the model did not produce
	FallbackGapsMarker = "Automated coverage analysis unavailable"
)

// coverageResponse represents the expected JSON response from the model.
type coverageResponse struct {
	CoveragePercentage int      `json:"coverage_percentage"`
	Covers             []string `json:"covers"`
	Gaps               []string `json:"gaps"`
}

// FallbackCoverage returns the fixed result used when scoring fails.
// The orchestrator recognizes it by the covers marker and filters it out.
func FallbackCoverage() types.CoverageResult {
	return types.CoverageResult{
		CoveragePercentage: FallbackCoveragePercentage,
		Covers:             []string{FallbackCoversMarker},
		Gaps:               []string{FallbackGapsMarker},
	}
}

// ScoreCoverage asks the model how much of the requirement profile one
// repository already covers. It never returns an error: any failure (API
// error, cancelled context, unparseable output) yields the fixed fallback.
func ScoreCoverage(ctx context.Context, repo *types.CandidateRepository, profile *types.RequirementProfile, client llm.Client) types.CoverageResult {
	prompt := buildCoveragePrompt(repo, profile)

	jsonResp, err := client.GenerateJSON(ctx, prompt, llm.TierLite, coverageMaxOutputTokens)
	if err != nil {
		log.Printf("coverage scoring failed for %s: %v", repo.FullName, err)
		return FallbackCoverage()
	}

	jsonResp = llm.CleanJSONBlock(jsonResp)

	var response coverageResponse
	if err := json.Unmarshal([]byte(jsonResp), &response); err != nil {
		log.Printf("coverage response unparseable for %s: %v", repo.FullName, err)
		return FallbackCoverage()
	}

	return normalizeCoverage(response)
}

// normalizeCoverage clamps the percentage into [0,100], coerces missing
// lists to empty ones, and enforces the per-list item cap.
func normalizeCoverage(response coverageResponse) types.CoverageResult {
	result := types.CoverageResult{
		CoveragePercentage: response.CoveragePercentage,
		Covers:             response.Covers,
		Gaps:               response.Gaps,
	}

	if result.CoveragePercentage < 0 {
		result.CoveragePercentage = 0
	}
	if result.CoveragePercentage > 100 {
		result.CoveragePercentage = 100
	}

	if result.Covers == nil {
		result.Covers = []string{}
	}
	if result.Gaps == nil {
		result.Gaps = []string{}
	}
	if len(result.Covers) > maxCoverageItems {
		result.Covers = result.Covers[:maxCoverageItems]
	}
	if len(result.Gaps) > maxCoverageItems {
		result.Gaps = result.Gaps[:maxCoverageItems]
	}

	return result
}

// buildCoveragePrompt constructs the scoring prompt for one repository.
func buildCoveragePrompt(repo *types.CandidateRepository, profile *types.RequirementProfile) string {
	description := "Not provided"
	if repo.Description != nil && *repo.Description != "" {
		description = *repo.Description
	}

	language := "Unknown"
	if repo.Language != nil && *repo.Language != "" {
		language = *repo.Language
	}

	projectType := profile.ProjectType
	if projectType == "" {
		projectType = "Not specified"
	}

	template := prompts.MustGet("ranking.json", "score-coverage")
	return prompts.Format(template, map[string]string{
		"ProjectType":           projectType,
		"Deliverables":          formatList(profile.Deliverables),
		"TechnicalRequirements": formatList(profile.TechnicalRequirements),
		"Integrations":          formatList(profile.Integrations),
		"FullName":              repo.FullName,
		"Description":           description,
		"Language":              language,
		"Stars":                 strconv.Itoa(repo.Stars),
	})
}

// formatList joins a requirement list for prompt embedding.
func formatList(items []string) string {
	if len(items) == 0 {
		return "Not specified"
	}
	return strings.Join(items, ", ")
}
