// Package report assembles the deep-dive detail report for a single
// candidate repository: metadata, contributor count, README summary,
// maintenance health, and a model-generated fit analysis.
package report

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/repo-scout/internal/github"
	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/prompts"
	"github.com/jonathan/repo-scout/internal/types"
)

const (
	// maxReadmeChars caps README content before prompt embedding. The cut
	// is a hard cap on runes and may land mid-word.
	maxReadmeChars = 3000

	// fitReportMaxOutputTokens bounds the fit report call. The report runs
	// once per drill-down, so it gets a larger budget than coverage scoring.
	fitReportMaxOutputTokens = 2048

	// readmeUnavailable stands in for a README that could not be fetched.
	readmeUnavailable = "README not available"
)

// FallbackReadmeSummary is the summary substituted when the fit report
// model call fails.
const FallbackReadmeSummary = "Automated README analysis unavailable."

// FallbackFitAnalysis returns the fixed fit analysis substituted when the
// model call fails. Like coverage scoring, this stage never raises for
// model failures.
func FallbackFitAnalysis() types.FitAnalysis {
	return types.FitAnalysis{
		Covers:                   []string{"General implementation reference"},
		Gaps:                     []string{"Automated fit analysis unavailable"},
		TimeSavedEstimate:        "Unable to estimate",
		RecommendedModifications: []string{},
		Risks:                    []string{"Fit not assessed automatically; review the repository manually before adopting it"},
	}
}

// Gateway is the subset of the GitHub client the analyzer needs.
type Gateway interface {
	GetMetadata(ctx context.Context, owner, name string) (*github.Metadata, error)
	CountContributors(ctx context.Context, owner, name string) (int, error)
	GetReadme(ctx context.Context, owner, name string) (string, error)
}

// Analyzer produces repository detail reports.
type Analyzer struct {
	gateway     Gateway
	client      llm.Client
	callTimeout time.Duration
}

// NewAnalyzer creates an Analyzer. A non-positive callTimeout falls back
// to the default model call timeout.
func NewAnalyzer(gateway Gateway, client llm.Client, callTimeout time.Duration) *Analyzer {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Analyzer{
		gateway:     gateway,
		client:      client,
		callTimeout: callTimeout,
	}
}

// DefaultCallTimeout bounds the fit report model call.
const DefaultCallTimeout = 30 * time.Second

// fitReportResponse represents the expected JSON response from the model.
type fitReportResponse struct {
	ReadmeSummary string            `json:"readme_summary"`
	FitAnalysis   types.FitAnalysis `json:"fit_analysis"`
}

// AnalyzeRepository fetches metadata, contributor count, and README
// concurrently, classifies maintenance health, and asks the model for a
// fit report. A missing README degrades to a placeholder; metadata or
// contributor failures are systemic and abort the report.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, owner, name string, profile *types.RequirementProfile) (*types.RepositoryDetail, error) {
	fullName := owner + "/" + name

	var (
		metadata     *github.Metadata
		contributors int
		readme       string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta, err := a.gateway.GetMetadata(gctx, owner, name)
		if err != nil {
			return &FetchError{Resource: "metadata", Repository: fullName, Cause: err}
		}
		metadata = meta
		return nil
	})
	g.Go(func() error {
		count, err := a.gateway.CountContributors(gctx, owner, name)
		if err != nil {
			return &FetchError{Resource: "contributors", Repository: fullName, Cause: err}
		}
		contributors = count
		return nil
	})
	g.Go(func() error {
		content, err := a.gateway.GetReadme(gctx, owner, name)
		if err != nil {
			log.Printf("README fetch failed for %s: %v", fullName, err)
			readme = readmeUnavailable
			return nil
		}
		readme = truncateReadme(content)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	days := DaysSincePush(metadata.Repository.PushedAt, time.Now())

	detail := &types.RepositoryDetail{
		Repository:    metadata.Repository,
		Forks:         metadata.Forks,
		OpenIssues:    metadata.OpenIssues,
		Contributors:  contributors,
		LastCommit:    metadata.Repository.PushedAt,
		DaysSincePush: days,
		Health:        ClassifyHealth(days),
	}

	summary, fit := a.generateFitReport(ctx, detail, readme, profile)
	detail.ReadmeSummary = summary
	detail.Fit = fit

	return detail, nil
}

// generateFitReport asks the model for the README summary and fit
// analysis. It never returns an error: any failure yields the fixed
// fallback pair.
func (a *Analyzer) generateFitReport(ctx context.Context, detail *types.RepositoryDetail, readme string, profile *types.RequirementProfile) (string, types.FitAnalysis) {
	prompt := buildFitPrompt(detail, readme, profile)

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	jsonResp, err := a.client.GenerateJSON(callCtx, prompt, llm.TierStandard, fitReportMaxOutputTokens)
	if err != nil {
		log.Printf("fit report failed for %s: %v", detail.Repository.FullName, err)
		return FallbackReadmeSummary, FallbackFitAnalysis()
	}

	jsonResp = llm.CleanJSONBlock(jsonResp)

	var response fitReportResponse
	if err := json.Unmarshal([]byte(jsonResp), &response); err != nil {
		log.Printf("fit report unparseable for %s: %v", detail.Repository.FullName, err)
		return FallbackReadmeSummary, FallbackFitAnalysis()
	}

	return response.ReadmeSummary, normalizeFitAnalysis(response.FitAnalysis)
}

// normalizeFitAnalysis coerces missing lists to empty ones. List lengths
// are bounded by prompt instruction, not trimmed here.
func normalizeFitAnalysis(fit types.FitAnalysis) types.FitAnalysis {
	if fit.Covers == nil {
		fit.Covers = []string{}
	}
	if fit.Gaps == nil {
		fit.Gaps = []string{}
	}
	if fit.RecommendedModifications == nil {
		fit.RecommendedModifications = []string{}
	}
	if fit.Risks == nil {
		fit.Risks = []string{}
	}
	return fit
}

// truncateReadme enforces the README character budget.
func truncateReadme(content string) string {
	runes := []rune(content)
	if len(runes) <= maxReadmeChars {
		return content
	}
	return string(runes[:maxReadmeChars])
}

// buildFitPrompt constructs the fit report prompt from full metadata, the
// truncated README, and the requirement profile.
func buildFitPrompt(detail *types.RepositoryDetail, readme string, profile *types.RequirementProfile) string {
	repo := detail.Repository

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

	template := prompts.MustGet("report.json", "fit-report")
	return prompts.Format(template, map[string]string{
		"ProjectType":           projectType,
		"Deliverables":          formatList(profile.Deliverables),
		"TechnicalRequirements": formatList(profile.TechnicalRequirements),
		"Integrations":          formatList(profile.Integrations),
		"FullName":              repo.FullName,
		"Description":           description,
		"Language":              language,
		"Stars":                 strconv.Itoa(repo.Stars),
		"Forks":                 strconv.Itoa(detail.Forks),
		"OpenIssues":            strconv.Itoa(detail.OpenIssues),
		"Contributors":          strconv.Itoa(detail.Contributors),
		"Health":                string(detail.Health),
		"Readme":                readme,
	})
}

// formatList joins a requirement list for prompt embedding.
func formatList(items []string) string {
	if len(items) == 0 {
		return "Not specified"
	}
	return strings.Join(items, ", ")
}
