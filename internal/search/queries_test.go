package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/repo-scout/internal/types"
)

func TestBuildQueries_Deterministic(t *testing.T) {
	profile := &types.RequirementProfile{
		ProjectType:           "Inventory management platform",
		Deliverables:          []string{"Warehouse dashboard", "Barcode scanning"},
		TechnicalRequirements: []string{"PostgreSQL"},
		Integrations:          []string{"Shopify"},
	}

	first := BuildQueries(profile, nil)
	second := BuildQueries(profile, nil)
	assert.Equal(t, first, second)
}

func TestBuildQueries_AppointmentSchedulingExample(t *testing.T) {
	profile := &types.RequirementProfile{
		ProjectType:           "Appointment scheduling system",
		Deliverables:          []string{"Booking UI", "SMS reminders"},
		TechnicalRequirements: []string{},
		Integrations:          []string{},
	}

	queries := BuildQueries(profile, nil)
	require.Len(t, queries, 1)
	assert.Equal(t, "appointment scheduling system booking reminders", queries[0])
}

func TestBuildQueries_AtMostThree(t *testing.T) {
	profile := &types.RequirementProfile{
		ProjectType:           "Restaurant ordering platform with delivery tracking",
		Deliverables:          []string{"Menu builder", "Order tracking", "Driver dispatch"},
		TechnicalRequirements: []string{"React", "Node.js", "MongoDB"},
		Integrations:          []string{"Stripe", "Twilio"},
	}

	queries := BuildQueries(profile, nil)
	assert.Len(t, queries, 3)
	assert.Equal(t, "restaurant React", queries[1])
	assert.Equal(t, "restaurant Stripe", queries[2])
}

func TestBuildQueries_SingleQueryWhenListsEmpty(t *testing.T) {
	profile := &types.RequirementProfile{
		ProjectType:  "Fitness tracking application",
		Deliverables: []string{"Workout log"},
	}

	queries := BuildQueries(profile, nil)
	assert.Len(t, queries, 1)
}

func TestBuildQueries_NoUsableTerms(t *testing.T) {
	profile := &types.RequirementProfile{
		ProjectType:           "a b c",
		Deliverables:          []string{"x", "y"},
		TechnicalRequirements: []string{"Redis"},
	}

	queries := BuildQueries(profile, nil)
	require.Len(t, queries, 2)
	// Query 1 is empty; query 2 falls back to the requirement alone
	assert.Equal(t, "", queries[0])
	assert.Equal(t, "Redis", queries[1])
}

func TestBuildQueries_ShortTokensFiltered(t *testing.T) {
	profile := &types.RequirementProfile{
		ProjectType:  "CRM for gyms",
		Deliverables: []string{"API and SMS"},
	}

	queries := BuildQueries(profile, nil)
	require.Len(t, queries, 1)
	// "CRM", "for", "API", "and", "SMS" are all three characters or fewer
	assert.Equal(t, "gyms", queries[0])
}

func TestBuildQueries_DuplicateTermsRemoved(t *testing.T) {
	profile := &types.RequirementProfile{
		ProjectType:  "Booking booking system",
		Deliverables: []string{"Booking calendar"},
	}

	queries := BuildQueries(profile, nil)
	require.Len(t, queries, 1)
	assert.Equal(t, "booking system calendar", queries[0])
}

func TestBuildQueries_AdditionalContextFolded(t *testing.T) {
	profile := &types.RequirementProfile{
		ProjectType:  "Appointment scheduling system",
		Deliverables: []string{"Booking UI"},
	}
	answers := &types.AnswerSet{
		Answers:           map[string]string{"q1": "Yes"},
		AdditionalContext: "Must support multiple barbershop locations",
	}

	queries := BuildQueries(profile, answers)
	require.Len(t, queries, 1)
	// Context terms append after profile terms, capped at two
	assert.Equal(t, "appointment scheduling system booking must support", queries[0])
}

func TestBuildQueries_ChosenOptionsNotFolded(t *testing.T) {
	profile := &types.RequirementProfile{
		ProjectType:  "Appointment scheduling system",
		Deliverables: []string{"Booking UI"},
	}
	answers := &types.AnswerSet{
		Answers: map[string]string{"q1": "PostgreSQL"},
	}

	queries := BuildQueries(profile, answers)
	require.Len(t, queries, 1)
	assert.NotContains(t, queries[0], "postgresql")
}
