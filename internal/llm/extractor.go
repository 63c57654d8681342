// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "RequirementProfile")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// RequirementProfileSchema returns the extraction schema for statement-of-work documents.
// Extracts the project type, deliverables, technical requirements, integrations,
// and clarifying questions for the user.
func RequirementProfileSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "RequirementProfile",
		Description: `You are an expert software consultant analyzing a statement of work.
Your task is to extract the requirements a development team would need to scope the engagement.
IMPORTANT: Ground every extracted item in the document text.
Goal: Extract the project type, concrete deliverables, technical requirements, and external integrations.
Where the document is ambiguous about something that changes the build, add a clarifying question with a small set of answer options.
EXCLUDE: Legal terms, payment schedules, boilerplate about the contracting parties.`,
		Fields: []SchemaField{
			{
				Name:        "project_type",
				Type:        "\"string\"",
				Description: "Short phrase naming the kind of system (e.g., 'Appointment scheduling system')",
				Required:    true,
			},
			{
				Name:        "deliverables",
				Type:        "[\"string\"]",
				Description: "Concrete deliverables the document commits to - at least one",
				Required:    true,
			},
			{
				Name:        "technical_requirements",
				Type:        "[\"string\"]",
				Description: "Named technologies, stacks, and technical constraints",
				Required:    false,
			},
			{
				Name:        "integrations",
				Type:        "[\"string\"]",
				Description: "External systems or services the work must integrate with",
				Required:    false,
			},
			{
				Name:        "clarifying_questions",
				Type:        "[{\"id\": \"string\", \"prompt\": \"string\", \"options\": [\"string\"]}]",
				Description: "Questions for the user where the document is ambiguous; 2 to 4 options each, ids q1, q2, ...",
				Required:    false,
			},
		},
	}
}
