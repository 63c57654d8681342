// Package analysis extracts a structured RequirementProfile from statement-of-work text using LLM extraction.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/types"
)

// analysisMaxOutputTokens bounds the structured-output budget for requirement
// extraction. This is the largest model call in the pipeline and runs once per
// document, so it gets a bigger budget than the per-candidate scoring calls.
const analysisMaxOutputTokens = 4096

const (
	minQuestionOptions = 2
	maxQuestionOptions = 4
)

// AnalyzeRequirements extracts a structured RequirementProfile from cleaned
// statement-of-work text
func AnalyzeRequirements(ctx context.Context, sowText string, client llm.Client) (*types.RequirementProfile, error) {
	if strings.TrimSpace(sowText) == "" {
		return nil, &ValidationError{
			Field:   "document_text",
			Message: "document text is empty",
		}
	}

	// Construct extraction prompt
	prompt := llm.BuildExtractionPrompt(llm.RequirementProfileSchema(), sowText)

	// Use TierAdvanced for structured requirement extraction (requires reasoning)
	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced, analysisMaxOutputTokens)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to generate requirement profile",
			Cause:   err,
		}
	}

	// Clean markdown code blocks if present
	responseText = llm.CleanJSONBlock(responseText)

	// Parse JSON response
	profile, err := parseProfileResponse(responseText)
	if err != nil {
		return nil, err
	}

	// Post-process the profile
	if err := postProcessProfile(profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// parseProfileResponse parses the JSON response into a RequirementProfile
func parseProfileResponse(jsonText string) (*types.RequirementProfile, error) {
	var profile types.RequirementProfile
	if err := json.Unmarshal([]byte(jsonText), &profile); err != nil {
		return nil, &ParseError{
			Message: "failed to parse requirement profile JSON",
			Cause:   err,
		}
	}

	return &profile, nil
}

// postProcessProfile applies normalization and validation
func postProcessProfile(profile *types.RequirementProfile) error {
	profile.ProjectType = strings.TrimSpace(profile.ProjectType)
	profile.Deliverables = normalizeTerms(profile.Deliverables)
	profile.TechnicalRequirements = normalizeTerms(profile.TechnicalRequirements)
	profile.Integrations = normalizeTerms(profile.Integrations)
	profile.ClarifyingQuestions = normalizeQuestions(profile.ClarifyingQuestions)

	if len(profile.Deliverables) == 0 {
		return &ValidationError{
			Field:   "deliverables",
			Message: "at least one deliverable is required",
		}
	}

	for i, question := range profile.ClarifyingQuestions {
		if len(question.Options) < minQuestionOptions || len(question.Options) > maxQuestionOptions {
			return &ValidationError{
				Field: fmt.Sprintf("clarifying_questions[%d].options", i),
				Message: fmt.Sprintf("expected %d to %d answer options, got %d",
					minQuestionOptions, maxQuestionOptions, len(question.Options)),
			}
		}
	}

	return nil
}

// normalizeTerms trims whitespace, drops empty entries, and deduplicates
// case-insensitively while preserving first-appearance order
func normalizeTerms(terms []string) []string {
	normalized := make([]string, 0, len(terms))
	seen := make(map[string]bool)

	for _, term := range terms {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" {
			continue // Skip empty terms
		}

		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}

		normalized = append(normalized, trimmed)
		seen[key] = true
	}

	return normalized
}

// normalizeQuestions trims prompts and options, drops promptless questions,
// and assigns sequential IDs where the model omitted them
func normalizeQuestions(questions []types.ClarifyingQuestion) []types.ClarifyingQuestion {
	normalized := make([]types.ClarifyingQuestion, 0, len(questions))

	for _, question := range questions {
		question.Prompt = strings.TrimSpace(question.Prompt)
		if question.Prompt == "" {
			continue // Skip questions without a prompt
		}

		question.ID = strings.TrimSpace(question.ID)
		question.Options = normalizeTerms(question.Options)
		normalized = append(normalized, question)
	}

	// IDs are position-based so answers can reference questions stably
	for i := range normalized {
		if normalized[i].ID == "" {
			normalized[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}

	return normalized
}
