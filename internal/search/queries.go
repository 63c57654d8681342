// Package search turns a requirement profile into bounded repository search
// queries and runs them against a search gateway.
package search

import (
	"strings"

	"github.com/jonathan/repo-scout/internal/types"
)

const (
	maxProjectTypeTerms = 3
	maxDeliverableTerms = 2
	maxContextTerms     = 2
)

// MaxQueries bounds how many searches one pipeline run may issue.
const MaxQueries = 3

// BuildQueries derives up to MaxQueries search queries from a requirement
// profile and the user's answers. Deterministic: identical inputs always
// produce identical queries in the same order.
//
// Query 1 joins the combined keyword terms. Queries 2 and 3 pair the leading
// term with the first technical requirement and the first integration, and
// are only emitted when those lists are non-empty. Query 1 may be an empty
// string when no term survives filtering; the gateway treats it as no-op.
func BuildQueries(profile *types.RequirementProfile, answers *types.AnswerSet) []string {
	projectTerms := keywordTerms(profile.ProjectType)
	if len(projectTerms) > maxProjectTypeTerms {
		projectTerms = projectTerms[:maxProjectTypeTerms]
	}

	deliverableTerms := keywordTerms(strings.Join(profile.Deliverables, " "))
	if len(deliverableTerms) > maxDeliverableTerms {
		deliverableTerms = deliverableTerms[:maxDeliverableTerms]
	}

	terms := dedupeTerms(append(projectTerms, deliverableTerms...))

	// Fold in free-text context from the answers; chosen options are short
	// labels, not searchable terms
	if answers != nil && answers.AdditionalContext != "" {
		contextTerms := keywordTerms(answers.AdditionalContext)
		if len(contextTerms) > maxContextTerms {
			contextTerms = contextTerms[:maxContextTerms]
		}
		terms = dedupeTerms(append(terms, contextTerms...))
	}

	queries := []string{strings.Join(terms, " ")}

	lead := ""
	if len(terms) > 0 {
		lead = terms[0]
	}
	if len(profile.TechnicalRequirements) > 0 {
		queries = append(queries, joinTerms(lead, profile.TechnicalRequirements[0]))
	}
	if len(profile.Integrations) > 0 {
		queries = append(queries, joinTerms(lead, profile.Integrations[0]))
	}

	return queries
}

// keywordTerms splits text on whitespace and keeps lower-cased terms longer
// than three characters. Shorter tokens are stopwords or abbreviations too
// ambiguous to search on.
func keywordTerms(text string) []string {
	var terms []string
	for _, field := range strings.Fields(text) {
		if len(field) > 3 {
			terms = append(terms, strings.ToLower(field))
		}
	}
	return terms
}

// dedupeTerms removes duplicates preserving first appearance.
func dedupeTerms(terms []string) []string {
	unique := make([]string, 0, len(terms))
	seen := make(map[string]bool)
	for _, term := range terms {
		if !seen[term] {
			unique = append(unique, term)
			seen[term] = true
		}
	}
	return unique
}

func joinTerms(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}
