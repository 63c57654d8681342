package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier, maxOutputTokens int32) (string, error)
	GetModelFunc     func(tier llm.ModelTier) string
	CloseFunc        func() error
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, maxOutputTokens int32) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier, maxOutputTokens)
	}
	return `{"coverage_percentage": 60, "covers": ["Booking UI"], "gaps": ["SMS reminders"]}`, nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

func (m *MockLLMClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func testRepo() *types.CandidateRepository {
	description := "Open source web appointment scheduling system"
	language := "PHP"
	return &types.CandidateRepository{
		ID:          102,
		Owner:       "alextselegidis",
		Name:        "easyappointments",
		FullName:    "alextselegidis/easyappointments",
		Description: &description,
		Language:    &language,
		Stars:       3500,
		URL:         "https://github.com/alextselegidis/easyappointments",
	}
}

func testProfile() *types.RequirementProfile {
	return &types.RequirementProfile{
		ProjectType:           "Appointment scheduling system",
		Deliverables:          []string{"Booking UI", "SMS reminders"},
		TechnicalRequirements: []string{"PostgreSQL"},
		Integrations:          []string{"Twilio"},
	}
}

func TestScoreCoverage_Success(t *testing.T) {
	var gotPrompt string
	var gotTier llm.ModelTier
	var gotBudget int32
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, tier llm.ModelTier, maxOutputTokens int32) (string, error) {
			gotPrompt = prompt
			gotTier = tier
			gotBudget = maxOutputTokens
			return `{"coverage_percentage": 72, "covers": ["Booking UI", "Calendar"], "gaps": ["SMS reminders"]}`, nil
		},
	}

	result := ScoreCoverage(context.Background(), testRepo(), testProfile(), mockClient)

	assert.Equal(t, 72, result.CoveragePercentage)
	assert.Equal(t, []string{"Booking UI", "Calendar"}, result.Covers)
	assert.Equal(t, []string{"SMS reminders"}, result.Gaps)

	// The scorer runs per candidate, so it uses the cheap tier and a bounded budget
	assert.Equal(t, llm.TierLite, gotTier)
	assert.Equal(t, int32(1024), gotBudget)

	assert.Contains(t, gotPrompt, "alextselegidis/easyappointments")
	assert.Contains(t, gotPrompt, "Booking UI, SMS reminders")
	assert.Contains(t, gotPrompt, "PostgreSQL")
	assert.Contains(t, gotPrompt, "Twilio")
	assert.Contains(t, gotPrompt, "3500")
}

func TestScoreCoverage_APIFailureReturnsExactFallback(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			return "", errors.New("API rate limit exceeded")
		},
	}

	result := ScoreCoverage(context.Background(), testRepo(), testProfile(), mockClient)

	assert.Equal(t, FallbackCoverage(), result)
	assert.Equal(t, 30, result.CoveragePercentage)
	assert.Equal(t, []string{FallbackCoversMarker}, result.Covers)
	assert.Equal(t, []string{FallbackGapsMarker}, result.Gaps)
}

func TestScoreCoverage_NonJSONReturnsFallback(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			return "I could not assess this repository.", nil
		},
	}

	result := ScoreCoverage(context.Background(), testRepo(), testProfile(), mockClient)
	assert.Equal(t, FallbackCoverage(), result)
}

func TestScoreCoverage_MarkdownWrappedJSON(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			return "```json\n{\"coverage_percentage\": 45, \"covers\": [\"Calendar\"], \"gaps\": [\"Payments\"]}\n```", nil
		},
	}

	result := ScoreCoverage(context.Background(), testRepo(), testProfile(), mockClient)
	assert.Equal(t, 45, result.CoveragePercentage)
	assert.Equal(t, []string{"Calendar"}, result.Covers)
}

func TestScoreCoverage_ClampsPercentage(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		expected int
	}{
		{"above 100 is clamped", 150, 100},
		{"below 0 is clamped", -10, 0},
		{"normal score unchanged", 72, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &MockLLMClient{
				GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
					resp := coverageResponse{
						CoveragePercentage: tt.score,
						Covers:             []string{"Something"},
						Gaps:               []string{"Something else"},
					}
					jsonBytes, _ := json.Marshal(resp)
					return string(jsonBytes), nil
				},
			}

			result := ScoreCoverage(context.Background(), testRepo(), testProfile(), mockClient)
			assert.Equal(t, tt.expected, result.CoveragePercentage)
		})
	}
}

func TestScoreCoverage_CoercesMissingFields(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			return `{"covers": ["Calendar"]}`, nil
		},
	}

	result := ScoreCoverage(context.Background(), testRepo(), testProfile(), mockClient)

	// Missing numeric field coerces to zero, missing list to empty
	assert.Equal(t, 0, result.CoveragePercentage)
	assert.Equal(t, []string{"Calendar"}, result.Covers)
	require.NotNil(t, result.Gaps)
	assert.Empty(t, result.Gaps)
}

func TestScoreCoverage_TruncatesOverlongLists(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			return `{"coverage_percentage": 80, "covers": ["a","b","c","d","e","f","g"], "gaps": ["x"]}`, nil
		},
	}

	result := ScoreCoverage(context.Background(), testRepo(), testProfile(), mockClient)
	assert.Len(t, result.Covers, 5)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, result.Covers)
}

func TestScoreCoverage_CancelledContext(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			return "", ctx.Err()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := ScoreCoverage(ctx, testRepo(), testProfile(), mockClient)
	assert.Equal(t, FallbackCoverage(), result)
}

func TestBuildCoveragePrompt_EmptyFields(t *testing.T) {
	repo := &types.CandidateRepository{
		ID:       1,
		FullName: "bare/repo",
	}
	profile := &types.RequirementProfile{
		Deliverables: []string{"Something"},
	}

	prompt := buildCoveragePrompt(repo, profile)

	assert.Contains(t, prompt, "Not specified")
	assert.Contains(t, prompt, "Not provided")
	assert.Contains(t, prompt, "Unknown")
}
