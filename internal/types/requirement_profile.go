// Package types provides type definitions for structured data used throughout the repo-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// RequirementProfile represents the structured requirements extracted from a
// statement-of-work document
type RequirementProfile struct {
	ProjectType           string               `json:"project_type"`
	Deliverables          []string             `json:"deliverables" validate:"required,min=1"`
	TechnicalRequirements []string             `json:"technical_requirements"`
	Integrations          []string             `json:"integrations"`
	ClarifyingQuestions   []ClarifyingQuestion `json:"clarifying_questions" validate:"dive"`
}

// ClarifyingQuestion represents a follow-up question the analysis surfaced
// for the user, with a small fixed set of answer options
type ClarifyingQuestion struct {
	ID      string   `json:"id" validate:"required"`
	Prompt  string   `json:"prompt" validate:"required"`
	Options []string `json:"options" validate:"min=2,max=4"`
}

// Validate validates the RequirementProfile using the validator.
func (p *RequirementProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}
