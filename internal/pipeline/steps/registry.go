// Package steps provides step definitions and dependency validation
// for the repository scouting pipeline.
package steps

import (
	"fmt"
	"sort"
)

// Step categories group related pipeline stages.
const (
	CategoryIngestion = "ingestion"
	CategoryAnalysis  = "analysis"
	CategorySearch    = "search"
	CategoryRanking   = "ranking"
	CategoryReport    = "report"
)

// Step names identify pipeline stages in progress events and run reporting.
const (
	StepIngestDocument      = "ingest_document"
	StepAnalyzeRequirements = "analyze_requirements"
	StepBuildQueries        = "build_queries"
	StepSearchRepositories  = "search_repositories"
	StepRankRepositories    = "rank_repositories"
	StepAnalyzeRepository   = "analyze_repository"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// CompletionChecker reports whether the named step has completed for the
// current run.
type CompletionChecker func(stepName string) bool

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepIngestDocument: {
		Name:         StepIngestDocument,
		Category:     CategoryIngestion,
		Dependencies: []string{},
	},
	StepAnalyzeRequirements: {
		Name:         StepAnalyzeRequirements,
		Category:     CategoryAnalysis,
		Dependencies: []string{StepIngestDocument},
	},
	StepBuildQueries: {
		Name:         StepBuildQueries,
		Category:     CategorySearch,
		Dependencies: []string{StepAnalyzeRequirements},
	},
	StepSearchRepositories: {
		Name:         StepSearchRepositories,
		Category:     CategorySearch,
		Dependencies: []string{StepBuildQueries},
	},
	StepRankRepositories: {
		Name:         StepRankRepositories,
		Category:     CategoryRanking,
		Dependencies: []string{StepSearchRepositories},
	},
	StepAnalyzeRepository: {
		Name:         StepAnalyzeRepository,
		Category:     CategoryReport,
		Dependencies: []string{StepRankRepositories},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies: %v", e.MissingDependencies)
}

// ValidateDependencies checks if all required dependencies for a step are completed
func ValidateDependencies(stepName string, completed CompletionChecker) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed(dep) {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}

	return nil
}

// AvailableSteps returns steps whose dependencies are met and which have not
// completed themselves, sorted for stable reporting.
func AvailableSteps(completed CompletionChecker) []string {
	var available []string

	for stepName := range StepRegistry {
		if completed(stepName) {
			continue // Already completed
		}
		if err := ValidateDependencies(stepName, completed); err != nil {
			continue // Dependencies not met
		}
		available = append(available, stepName)
	}

	sort.Strings(available)
	return available
}

// BlockedSteps returns steps that cannot run because a dependency has not
// completed, sorted for stable reporting.
func BlockedSteps(completed CompletionChecker) []string {
	var blocked []string

	for stepName := range StepRegistry {
		if completed(stepName) {
			continue
		}
		if err := ValidateDependencies(stepName, completed); err != nil {
			blocked = append(blocked, stepName)
		}
	}

	sort.Strings(blocked)
	return blocked
}
