package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/repo-scout/internal/github"
	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/types"
)

// MockGateway implements Gateway for testing
type MockGateway struct {
	GetMetadataFunc       func(ctx context.Context, owner, name string) (*github.Metadata, error)
	CountContributorsFunc func(ctx context.Context, owner, name string) (int, error)
	GetReadmeFunc         func(ctx context.Context, owner, name string) (string, error)
}

func (m *MockGateway) GetMetadata(ctx context.Context, owner, name string) (*github.Metadata, error) {
	if m.GetMetadataFunc != nil {
		return m.GetMetadataFunc(ctx, owner, name)
	}
	return testMetadata(), nil
}

func (m *MockGateway) CountContributors(ctx context.Context, owner, name string) (int, error) {
	if m.CountContributorsFunc != nil {
		return m.CountContributorsFunc(ctx, owner, name)
	}
	return 12, nil
}

func (m *MockGateway) GetReadme(ctx context.Context, owner, name string) (string, error) {
	if m.GetReadmeFunc != nil {
		return m.GetReadmeFunc(ctx, owner, name)
	}
	return "Easy!Appointments is a web appointment scheduling system.", nil
}

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
	return `{"readme_summary": "A web appointment scheduling system.", "fit_analysis": {"covers": ["Booking UI"], "gaps": ["SMS reminders"], "time_saved_estimate": "2-3 weeks", "recommended_modifications": ["Add Twilio integration"], "risks": ["PHP stack"]}}`, nil
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

func testMetadata() *github.Metadata {
	description := "Open source web appointment scheduling system"
	language := "PHP"
	return &github.Metadata{
		Repository: types.CandidateRepository{
			ID:          102,
			Owner:       "alextselegidis",
			Name:        "easyappointments",
			FullName:    "alextselegidis/easyappointments",
			Description: &description,
			Language:    &language,
			Stars:       3500,
			PushedAt:    time.Now().Add(-10 * 24 * time.Hour),
			URL:         "https://github.com/alextselegidis/easyappointments",
		},
		Forks:      1200,
		OpenIssues: 45,
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

func TestAnalyzeRepository_Success(t *testing.T) {
	analyzer := NewAnalyzer(&MockGateway{}, &MockLLMClient{}, time.Second)

	detail, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.NoError(t, err)
	assert.Equal(t, "alextselegidis/easyappointments", detail.Repository.FullName)
	assert.Equal(t, 1200, detail.Forks)
	assert.Equal(t, 45, detail.OpenIssues)
	assert.Equal(t, 12, detail.Contributors)
	assert.Equal(t, detail.Repository.PushedAt, detail.LastCommit)
	assert.Equal(t, 10, detail.DaysSincePush)
	assert.Equal(t, types.HealthActive, detail.Health)
	assert.Equal(t, "A web appointment scheduling system.", detail.ReadmeSummary)
	assert.Equal(t, []string{"Booking UI"}, detail.Fit.Covers)
	assert.Equal(t, "2-3 weeks", detail.Fit.TimeSavedEstimate)
}

func TestAnalyzeRepository_PromptContents(t *testing.T) {
	var gotPrompt string
	var gotTier llm.ModelTier
	var gotBudget int32
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, tier llm.ModelTier, maxOutputTokens int32) (string, error) {
			gotPrompt = prompt
			gotTier = tier
			gotBudget = maxOutputTokens
			return `{"readme_summary": "ok", "fit_analysis": {}}`, nil
		},
	}

	analyzer := NewAnalyzer(&MockGateway{}, mockClient, time.Second)
	_, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.NoError(t, err)
	assert.Equal(t, llm.TierStandard, gotTier)
	assert.Equal(t, int32(2048), gotBudget)

	assert.Contains(t, gotPrompt, "alextselegidis/easyappointments")
	assert.Contains(t, gotPrompt, "Booking UI, SMS reminders")
	assert.Contains(t, gotPrompt, "1200")
	assert.Contains(t, gotPrompt, "45")
	assert.Contains(t, gotPrompt, "12")
	assert.Contains(t, gotPrompt, "active")
	assert.Contains(t, gotPrompt, "web appointment scheduling system")
}

func TestAnalyzeRepository_ReadmeFailureUsesPlaceholder(t *testing.T) {
	var gotPrompt string
	mockGateway := &MockGateway{
		GetReadmeFunc: func(_ context.Context, _, _ string) (string, error) {
			return "", errors.New("404 Not Found")
		},
	}
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier, _ int32) (string, error) {
			gotPrompt = prompt
			return `{"readme_summary": "ok", "fit_analysis": {}}`, nil
		},
	}

	analyzer := NewAnalyzer(mockGateway, mockClient, time.Second)
	detail, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Contains(t, gotPrompt, "README not available")
}

func TestAnalyzeRepository_MetadataFailureIsHard(t *testing.T) {
	mockGateway := &MockGateway{
		GetMetadataFunc: func(_ context.Context, _, _ string) (*github.Metadata, error) {
			return nil, errors.New("403 rate limited")
		},
	}

	analyzer := NewAnalyzer(mockGateway, &MockLLMClient{}, time.Second)
	detail, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.Error(t, err)
	assert.Nil(t, detail)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "metadata", fetchErr.Resource)
	assert.Equal(t, "alextselegidis/easyappointments", fetchErr.Repository)
}

func TestAnalyzeRepository_ContributorsFailureIsHard(t *testing.T) {
	mockGateway := &MockGateway{
		CountContributorsFunc: func(_ context.Context, _, _ string) (int, error) {
			return 0, errors.New("502 Bad Gateway")
		},
	}

	analyzer := NewAnalyzer(mockGateway, &MockLLMClient{}, time.Second)
	_, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "contributors", fetchErr.Resource)
}

func TestAnalyzeRepository_ModelFailureFallsBack(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			return "", errors.New("model unavailable")
		},
	}

	analyzer := NewAnalyzer(&MockGateway{}, mockClient, time.Second)
	detail, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.NoError(t, err)
	assert.Equal(t, FallbackReadmeSummary, detail.ReadmeSummary)
	assert.Equal(t, FallbackFitAnalysis(), detail.Fit)
	assert.Equal(t, "Unable to estimate", detail.Fit.TimeSavedEstimate)

	// GitHub data still populates even when the model is down
	assert.Equal(t, 1200, detail.Forks)
	assert.Equal(t, 12, detail.Contributors)
}

func TestAnalyzeRepository_UnparseableReportFallsBack(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			return "The repository looks promising overall.", nil
		},
	}

	analyzer := NewAnalyzer(&MockGateway{}, mockClient, time.Second)
	detail, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.NoError(t, err)
	assert.Equal(t, FallbackReadmeSummary, detail.ReadmeSummary)
	assert.Equal(t, FallbackFitAnalysis(), detail.Fit)
}

func TestAnalyzeRepository_TruncatesReadme(t *testing.T) {
	longReadme := strings.Repeat("a", 9997) + "END"
	require.Len(t, longReadme, 10000)

	var gotPrompt string
	mockGateway := &MockGateway{
		GetReadmeFunc: func(_ context.Context, _, _ string) (string, error) {
			return longReadme, nil
		},
	}
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier, _ int32) (string, error) {
			gotPrompt = prompt
			return `{"readme_summary": "ok", "fit_analysis": {}}`, nil
		},
	}

	analyzer := NewAnalyzer(mockGateway, mockClient, time.Second)
	_, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.NoError(t, err)
	assert.Contains(t, gotPrompt, strings.Repeat("a", 3000))
	assert.NotContains(t, gotPrompt, "END")
	assert.NotContains(t, gotPrompt, strings.Repeat("a", 3001))
}

func TestAnalyzeRepository_CoercesMissingFitLists(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			return `{"readme_summary": "ok", "fit_analysis": {"covers": ["Booking UI"]}}`, nil
		},
	}

	analyzer := NewAnalyzer(&MockGateway{}, mockClient, time.Second)
	detail, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.NoError(t, err)
	assert.Equal(t, []string{"Booking UI"}, detail.Fit.Covers)
	require.NotNil(t, detail.Fit.Gaps)
	assert.Empty(t, detail.Fit.Gaps)
	require.NotNil(t, detail.Fit.Risks)
	assert.Empty(t, detail.Fit.Risks)
}

func TestAnalyzeRepository_StaleRepository(t *testing.T) {
	metadata := testMetadata()
	metadata.Repository.PushedAt = time.Now().Add(-100 * 24 * time.Hour)
	mockGateway := &MockGateway{
		GetMetadataFunc: func(_ context.Context, _, _ string) (*github.Metadata, error) {
			return metadata, nil
		},
	}

	analyzer := NewAnalyzer(mockGateway, &MockLLMClient{}, time.Second)
	detail, err := analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())

	require.NoError(t, err)
	assert.Equal(t, types.HealthStale, detail.Health)
	assert.Equal(t, 100, detail.DaysSincePush)
}

func TestAnalyzeRepository_FetchesConcurrently(t *testing.T) {
	started := make(chan string, 3)
	release := make(chan struct{})

	mockGateway := &MockGateway{
		GetMetadataFunc: func(_ context.Context, _, _ string) (*github.Metadata, error) {
			started <- "metadata"
			<-release
			return testMetadata(), nil
		},
		CountContributorsFunc: func(_ context.Context, _, _ string) (int, error) {
			started <- "contributors"
			<-release
			return 12, nil
		},
		GetReadmeFunc: func(_ context.Context, _, _ string) (string, error) {
			started <- "readme"
			<-release
			return "README", nil
		},
	}

	analyzer := NewAnalyzer(mockGateway, &MockLLMClient{}, time.Second)

	done := make(chan struct{})
	go func() {
		_, _ = analyzer.AnalyzeRepository(context.Background(), "alextselegidis", "easyappointments", testProfile())
		close(done)
	}()

	// All three fetches begin before any of them completes
	for i := 0; i < 3; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatalf("fetch %d never started", i+1)
		}
	}
	close(release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("analysis never finished")
	}
}

func TestFetchError_Format(t *testing.T) {
	err := &FetchError{
		Resource:   "metadata",
		Repository: "owner/repo",
		Cause:      fmt.Errorf("403 rate limited"),
	}

	assert.Equal(t, "failed to fetch metadata for owner/repo: 403 rate limited", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "403 rate limited")
}
