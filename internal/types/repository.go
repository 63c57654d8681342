// Package types provides type definitions for structured data used throughout the repo-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// CandidateRepository represents a repository returned by the search gateway
type CandidateRepository struct {
	ID          int64     `json:"id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description *string   `json:"description,omitempty"`
	Language    *string   `json:"language,omitempty"`
	Stars       int       `json:"stars"`
	PushedAt    time.Time `json:"pushed_at"`
	URL         string    `json:"url"`
}
