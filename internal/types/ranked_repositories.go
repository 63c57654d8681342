// Package types provides type definitions for structured data used throughout the repo-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RankedRepositories represents a collection of coverage-ranked candidate repositories
type RankedRepositories struct {
	Repositories []RankedRepository `json:"repositories"`
	// Note carries an explanatory status message when the list is empty
	Note string `json:"note,omitempty"`
}

// RankedRepository represents a single candidate with its coverage assessment
type RankedRepository struct {
	Repository CandidateRepository `json:"repository"`
	Coverage   CoverageResult      `json:"coverage"`
}

// CoverageResult represents how well a repository covers the extracted requirements
type CoverageResult struct {
	CoveragePercentage int      `json:"coverage_percentage"`
	Covers             []string `json:"covers"`
	Gaps               []string `json:"gaps"`
}
