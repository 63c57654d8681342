// Package types provides type definitions for structured data used throughout the repo-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// HealthStatus classifies a repository by how recently it was pushed to
type HealthStatus string

// Health classifications derived from days since the last push.
const (
	HealthActive    HealthStatus = "active"
	HealthStale     HealthStatus = "stale"
	HealthAbandoned HealthStatus = "abandoned"
)

// FitAnalysis represents the model's assessment of how a repository fits the requirements
type FitAnalysis struct {
	Covers                   []string `json:"covers"`
	Gaps                     []string `json:"gaps"`
	TimeSavedEstimate        string   `json:"time_saved_estimate"`
	RecommendedModifications []string `json:"recommended_modifications"`
	Risks                    []string `json:"risks"`
}

// RepositoryDetail represents the full on-demand report for a single repository
type RepositoryDetail struct {
	Repository    CandidateRepository `json:"repository"`
	Forks         int                 `json:"forks"`
	OpenIssues    int                 `json:"open_issues"`
	Contributors  int                 `json:"contributors"`
	LastCommit    time.Time           `json:"last_commit"`
	DaysSincePush int                 `json:"days_since_push"`
	Health        HealthStatus        `json:"health"`
	ReadmeSummary string              `json:"readme_summary"`
	Fit           FitAnalysis         `json:"fit_analysis"`
}
