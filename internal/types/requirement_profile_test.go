// Package types provides type definitions for structured data used throughout the repo-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() RequirementProfile {
	return RequirementProfile{
		ProjectType:           "Appointment scheduling system",
		Deliverables:          []string{"Booking UI", "SMS reminders"},
		TechnicalRequirements: []string{"PostgreSQL"},
		Integrations:          []string{"Twilio"},
		ClarifyingQuestions: []ClarifyingQuestion{
			{ID: "q1", Prompt: "Does the system need multi-location support?", Options: []string{"Yes", "No"}},
		},
	}
}

func TestRequirementProfile_Validate(t *testing.T) {
	profile := validProfile()
	assert.NoError(t, profile.Validate())
}

func TestRequirementProfile_Validate_EmptyDeliverables(t *testing.T) {
	profile := validProfile()
	profile.Deliverables = nil
	assert.Error(t, profile.Validate())

	profile.Deliverables = []string{}
	assert.Error(t, profile.Validate())
}

func TestRequirementProfile_Validate_QuestionOptions(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		wantErr bool
	}{
		{"one option", []string{"Yes"}, true},
		{"two options", []string{"Yes", "No"}, false},
		{"four options", []string{"A", "B", "C", "D"}, false},
		{"five options", []string{"A", "B", "C", "D", "E"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := validProfile()
			profile.ClarifyingQuestions[0].Options = tt.options
			err := profile.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequirementProfile_Validate_MissingPrompt(t *testing.T) {
	profile := validProfile()
	profile.ClarifyingQuestions[0].Prompt = ""
	assert.Error(t, profile.Validate())
}

func TestRequirementProfile_JSONKeys(t *testing.T) {
	profile := validProfile()

	jsonBytes, err := json.Marshal(profile)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"project_type"`)
	assert.Contains(t, string(jsonBytes), `"technical_requirements"`)
	assert.Contains(t, string(jsonBytes), `"clarifying_questions"`)
	assert.Contains(t, string(jsonBytes), `"options":["Yes","No"]`)
}
