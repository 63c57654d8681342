package pipeline

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/repo-scout/internal/pipeline/steps"
	"github.com/jonathan/repo-scout/internal/types"
)

func TestNewRun(t *testing.T) {
	run := NewRun()

	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, StatusIdle, run.Status())
	assert.False(t, run.CreatedAt.IsZero())
	assert.Empty(t, run.Failure())
}

func TestRun_StartFromIdle(t *testing.T) {
	run := NewRun()

	require.NoError(t, run.Start())
	assert.Equal(t, StatusRunning, run.Status())
}

func TestRun_StartTwiceRejected(t *testing.T) {
	run := NewRun()
	require.NoError(t, run.Start())

	err := run.Start()

	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, StatusRunning, transitionErr.From)
	assert.Equal(t, StatusRunning, transitionErr.To)
}

func TestRun_CompleteOnlyFromRunning(t *testing.T) {
	run := NewRun()

	err := run.Complete()
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, StatusIdle, transitionErr.From)

	require.NoError(t, run.Start())
	require.NoError(t, run.Complete())
	assert.Equal(t, StatusSucceeded, run.Status())

	// A finished run stays finished
	assert.Error(t, run.Start())
	assert.Error(t, run.Retry())
}

func TestRun_FailRecordsCause(t *testing.T) {
	run := NewRun()
	require.NoError(t, run.Start())

	require.NoError(t, run.Fail(errors.New("search exploded")))

	assert.Equal(t, StatusFailed, run.Status())
	assert.Equal(t, "search exploded", run.Failure())
}

func TestRun_RetryOnlyFromFailed(t *testing.T) {
	run := NewRun()

	err := run.Retry()
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, StatusIdle, transitionErr.From)

	require.NoError(t, run.Start())
	require.NoError(t, run.Fail(errors.New("boom")))

	require.NoError(t, run.Retry())
	assert.Equal(t, StatusRunning, run.Status())
	assert.Empty(t, run.Failure(), "retry clears the recorded failure")
}

func TestRun_SetAnswers(t *testing.T) {
	run := NewRun()

	// No profile yet
	err := run.SetAnswers(&types.AnswerSet{Answers: map[string]string{"q1": "Yes"}})
	assert.Error(t, err)

	run.SetProfile(&types.RequirementProfile{
		Deliverables: []string{"Booking UI"},
		ClarifyingQuestions: []types.ClarifyingQuestion{
			{ID: "q1", Prompt: "Accept payments online?", Options: []string{"Yes", "No"}},
		},
	})

	// Unknown question ID
	err = run.SetAnswers(&types.AnswerSet{Answers: map[string]string{"q9": "Yes"}})
	var answerErr *AnswerError
	require.ErrorAs(t, err, &answerErr)
	assert.Equal(t, "q9", answerErr.QuestionID)
	assert.Nil(t, run.Answers())

	// Valid answers
	answers := &types.AnswerSet{
		Answers:           map[string]string{"q1": "Yes"},
		AdditionalContext: "must support walk-ins",
	}
	require.NoError(t, run.SetAnswers(answers))
	assert.Equal(t, answers, run.Answers())

	// Context-only answers need no question match
	require.NoError(t, run.SetAnswers(&types.AnswerSet{AdditionalContext: "react frontend"}))

	// Nil answers are a no-op
	require.NoError(t, run.SetAnswers(nil))
	assert.NotNil(t, run.Answers())
}

func TestRun_StepProgression(t *testing.T) {
	run := NewRun()

	view := run.View()
	assert.Equal(t, []string{steps.StepIngestDocument}, view.AvailableSteps)
	assert.Contains(t, view.BlockedSteps, steps.StepAnalyzeRequirements)
	assert.Contains(t, view.BlockedSteps, steps.StepAnalyzeRepository)

	run.SetDocument("Statement of work text", nil)
	assert.True(t, run.StepCompleted(steps.StepIngestDocument))
	assert.Equal(t, []string{steps.StepAnalyzeRequirements}, run.View().AvailableSteps)

	run.SetProfile(&types.RequirementProfile{Deliverables: []string{"Booking UI"}})
	assert.Equal(t, []string{steps.StepBuildQueries}, run.View().AvailableSteps)

	run.SetQueries([]string{"appointment scheduling"})
	run.SetCandidates([]types.CandidateRepository{{ID: 1, FullName: "a/b"}})
	run.SetResults(&types.RankedRepositories{})

	view = run.View()
	assert.Equal(t, []string{steps.StepAnalyzeRepository}, view.AvailableSteps)
	assert.Empty(t, view.BlockedSteps)
}

func TestRun_View(t *testing.T) {
	run := NewRun()
	profile := &types.RequirementProfile{
		ProjectType:  "Appointment scheduling system",
		Deliverables: []string{"Booking UI"},
	}
	run.SetProfile(profile)
	run.SetQueries([]string{"appointment scheduling"})
	run.SetCandidates([]types.CandidateRepository{{ID: 1}, {ID: 2}})
	require.NoError(t, run.Start())
	require.NoError(t, run.Fail(errors.New("rate limited")))

	view := run.View()

	assert.Equal(t, run.ID.String(), view.ID)
	assert.Equal(t, StatusFailed, view.Status)
	assert.Equal(t, profile, view.Profile)
	assert.Equal(t, []string{"appointment scheduling"}, view.Queries)
	assert.Equal(t, 2, view.CandidateCount)
	assert.Equal(t, "rate limited", view.Error)
	assert.False(t, view.UpdatedAt.Before(view.CreatedAt))
}

func TestRun_SetCandidatesNeverNil(t *testing.T) {
	run := NewRun()
	assert.Nil(t, run.Candidates(), "nil until the search stage records a result")

	run.SetCandidates(nil)

	assert.NotNil(t, run.Candidates(), "an empty search still marks the stage complete")
	assert.True(t, run.StepCompleted(steps.StepSearchRepositories))
}
