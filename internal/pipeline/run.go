// Package pipeline provides the high-level orchestration for the repository scouting process.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonathan/repo-scout/internal/analysis"
	"github.com/jonathan/repo-scout/internal/ingestion"
	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/observability"
	"github.com/jonathan/repo-scout/internal/pipeline/steps"
	"github.com/jonathan/repo-scout/internal/ranking"
	"github.com/jonathan/repo-scout/internal/search"
	"github.com/jonathan/repo-scout/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	SOWPath       string
	SOWURL        string
	Format        ingestion.Format
	Answers       *types.AnswerSet
	MinStars      int
	PerQueryLimit int
	CallTimeout   time.Duration
	UseBrowser    bool
	Verbose       bool
	OnProgress    ProgressCallback
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, run *Run, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    run.ID.String(),
			Content:  content,
		})
	}
}

// RunPipeline orchestrates the full SOW-to-ranking pipeline: document
// ingestion, requirement analysis, query building, repository search, and
// coverage ranking. Stage outputs are written into run as they complete.
func RunPipeline(ctx context.Context, run *Run, opts RunOptions, client llm.Client, gateway search.Gateway) error {
	// Initialize observability printer for verbose output
	printer := observability.NewPrinter(os.Stdout)

	if err := IngestDocument(ctx, run, opts); err != nil {
		return err
	}

	if err := AnalyzeDocument(ctx, run, opts, client); err != nil {
		return err
	}
	if opts.Verbose {
		profile := run.Profile()
		printer.PrintRequirementProfile(profile)
		printer.PrintClarifyingQuestions(profile.ClarifyingQuestions)
	}

	if opts.Answers != nil {
		if err := run.SetAnswers(opts.Answers); err != nil {
			return err
		}
	}

	if err := run.Start(); err != nil {
		return err
	}
	if err := RankRequirements(ctx, run, opts, client, gateway); err != nil {
		return err
	}

	if opts.Verbose {
		printer.PrintRankedRepositories(run.Results())
	}
	return nil
}

// IngestDocument runs the document ingestion stage from a file path or URL.
func IngestDocument(ctx context.Context, run *Run, opts RunOptions) error {
	var cleanedText string
	var metadata *ingestion.Metadata
	var err error

	if opts.SOWURL != "" {
		fmt.Printf("Step 1/5: Ingesting statement of work from URL: %s...\n", opts.SOWURL)
		cleanedText, metadata, err = ingestion.IngestFromURL(ctx, opts.SOWURL, opts.UseBrowser, opts.Verbose)
		if err != nil {
			return fmt.Errorf("document ingestion from URL failed: %w", err)
		}
	} else {
		fmt.Printf("Step 1/5: Ingesting statement of work from file: %s...\n", opts.SOWPath)
		cleanedText, metadata, err = ingestion.IngestFromFile(opts.SOWPath, opts.Format)
		if err != nil {
			return fmt.Errorf("document ingestion from file failed: %w", err)
		}
	}

	run.SetDocument(cleanedText, metadata)
	emitProgress(&opts, run, steps.StepIngestDocument, steps.CategoryIngestion,
		fmt.Sprintf("Ingested and cleaned %d characters of document text", len(cleanedText)), nil)
	return nil
}

// AnalyzeDocument runs the requirement analysis stage against the ingested text.
func AnalyzeDocument(ctx context.Context, run *Run, opts RunOptions, client llm.Client) error {
	text, _ := run.Document()

	fmt.Printf("Step 2/5: Analyzing requirements...\n")
	profile, err := analysis.AnalyzeRequirements(ctx, text, client)
	if err != nil {
		return fmt.Errorf("requirement analysis failed: %w", err)
	}
	run.SetProfile(profile)

	emitProgress(&opts, run, steps.StepAnalyzeRequirements, steps.CategoryAnalysis,
		fmt.Sprintf("Analyzed requirements: %s with %d deliverables and %d questions",
			profile.ProjectType, len(profile.Deliverables), len(profile.ClarifyingQuestions)), profile)
	return nil
}

// RankRequirements executes the query, search, and ranking stages for an
// analyzed run. The caller moves the run to running first (Start or Retry);
// the outcome is recorded on the run as succeeded or failed.
func RankRequirements(ctx context.Context, run *Run, opts RunOptions, client llm.Client, gateway search.Gateway) error {
	if status := run.Status(); status != StatusRunning {
		return fmt.Errorf("run %s is not running (status %s)", run.ID, status)
	}

	profile := run.Profile()
	if profile == nil {
		err := fmt.Errorf("run has no requirement profile")
		_ = run.Fail(err)
		return err
	}

	fmt.Printf("Step 3/5: Building search queries...\n")
	queries := search.BuildQueries(profile, run.Answers())
	if emptyQuerySet(queries) {
		err := fmt.Errorf("no search queries could be derived from the requirement profile")
		_ = run.Fail(err)
		return err
	}
	run.SetQueries(queries)
	emitProgress(&opts, run, steps.StepBuildQueries, steps.CategorySearch,
		fmt.Sprintf("Built %d search queries", len(queries)), queries)

	fmt.Printf("Step 4/5: Searching repositories across %d queries...\n", len(queries))
	searcher := search.NewSearcher(gateway, opts.MinStars, opts.PerQueryLimit)
	candidates := searcher.FindCandidates(ctx, queries)
	run.SetCandidates(candidates)
	emitProgress(&opts, run, steps.StepSearchRepositories, steps.CategorySearch,
		fmt.Sprintf("Found %d unique candidate repositories", len(candidates)), nil)

	fmt.Printf("Step 5/5: Scoring requirement coverage for %d candidates...\n", len(candidates))
	ranker := ranking.NewRanker(client, opts.CallTimeout)
	results := ranker.RankByCoverage(ctx, candidates, profile)

	// A cancelled context surfaces as fallback-scored candidates, not as an
	// error from the ranker; do not record that as success
	if ctx.Err() != nil {
		_ = run.Fail(ctx.Err())
		return ctx.Err()
	}

	run.SetResults(results)
	emitProgress(&opts, run, steps.StepRankRepositories, steps.CategoryRanking,
		fmt.Sprintf("Ranked %d repositories by coverage", len(results.Repositories)), results)

	if err := run.Complete(); err != nil {
		return err
	}
	fmt.Printf("Done! Ranked %d repositories.\n", len(results.Repositories))
	return nil
}

// emptyQuerySet reports whether every derived query is blank. A profile with
// no searchable terms must fail before any gateway call is made.
func emptyQuerySet(queries []string) bool {
	for _, query := range queries {
		if strings.TrimSpace(query) != "" {
			return false
		}
	}
	return true
}
