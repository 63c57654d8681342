// Package types provides type definitions for structured data used throughout the repo-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// AnswerSet represents the user's responses to clarifying questions.
// Answers maps question IDs to the chosen option text.
type AnswerSet struct {
	Answers           map[string]string `json:"answers"`
	AdditionalContext string            `json:"additional_context,omitempty"`
}
