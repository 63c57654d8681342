package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/repo-scout/internal/ingestion"
	"github.com/jonathan/repo-scout/internal/pipeline/steps"
	"github.com/jonathan/repo-scout/internal/types"
)

// Status represents the lifecycle state of a pipeline run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// TransitionError reports a state change the run's current status does not allow.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition run from %s to %s", e.From, e.To)
}

// AnswerError reports an answer submission referencing a question the
// analysis never asked.
type AnswerError struct {
	QuestionID string
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("answer references unknown question %q", e.QuestionID)
}

// Run holds the state of one pipeline execution: the ingested document, the
// analyzed profile, and the stage outputs. The mutex makes a Run safe to
// share between HTTP handlers and the background stage goroutine.
type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu           sync.RWMutex
	status       Status
	updatedAt    time.Time
	documentText string
	metadata     *ingestion.Metadata
	profile      *types.RequirementProfile
	answers      *types.AnswerSet
	queries      []string
	candidates   []types.CandidateRepository
	results      *types.RankedRepositories
	failure      string
}

// NewRun creates an idle run with a fresh ID.
func NewRun() *Run {
	now := time.Now()
	return &Run{
		ID:        uuid.New(),
		CreatedAt: now,
		status:    StatusIdle,
		updatedAt: now,
	}
}

// Start moves an idle run to running. Runs auto-start only from idle.
func (r *Run) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIdle {
		return &TransitionError{From: r.status, To: StatusRunning}
	}
	r.setStatusLocked(StatusRunning)
	return nil
}

// Retry moves a failed run back to running for another ranking attempt.
func (r *Run) Retry() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusFailed {
		return &TransitionError{From: r.status, To: StatusRunning}
	}
	r.failure = ""
	r.setStatusLocked(StatusRunning)
	return nil
}

// Complete moves a running run to succeeded.
func (r *Run) Complete() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusRunning {
		return &TransitionError{From: r.status, To: StatusSucceeded}
	}
	r.setStatusLocked(StatusSucceeded)
	return nil
}

// Fail moves a running run to failed, recording the cause.
func (r *Run) Fail(cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusRunning {
		return &TransitionError{From: r.status, To: StatusFailed}
	}
	if cause != nil {
		r.failure = cause.Error()
	}
	r.setStatusLocked(StatusFailed)
	return nil
}

func (r *Run) setStatusLocked(status Status) {
	r.status = status
	r.updatedAt = time.Now()
}

// Status returns the current lifecycle state.
func (r *Run) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Failure returns the recorded failure message, empty unless the run failed.
func (r *Run) Failure() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failure
}

// SetDocument records the cleaned document text and its provenance metadata.
func (r *Run) SetDocument(text string, metadata *ingestion.Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documentText = text
	r.metadata = metadata
	r.updatedAt = time.Now()
}

// Document returns the cleaned document text and its metadata.
func (r *Run) Document() (string, *ingestion.Metadata) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.documentText, r.metadata
}

// SetProfile records the analyzed requirement profile.
func (r *Run) SetProfile(profile *types.RequirementProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = profile
	r.updatedAt = time.Now()
}

// Profile returns the analyzed requirement profile, or nil before analysis.
func (r *Run) Profile() *types.RequirementProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profile
}

// SetAnswers records the user's answers after checking that every answer
// references a question the analysis actually asked.
func (r *Run) SetAnswers(answers *types.AnswerSet) error {
	if answers == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.profile == nil {
		return fmt.Errorf("run has no requirement profile to answer")
	}

	known := make(map[string]bool, len(r.profile.ClarifyingQuestions))
	for _, question := range r.profile.ClarifyingQuestions {
		known[question.ID] = true
	}
	for id := range answers.Answers {
		if !known[id] {
			return &AnswerError{QuestionID: id}
		}
	}

	r.answers = answers
	r.updatedAt = time.Now()
	return nil
}

// Answers returns the recorded answer set, or nil when none was submitted.
func (r *Run) Answers() *types.AnswerSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.answers
}

// SetQueries records the derived search queries.
func (r *Run) SetQueries(queries []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = queries
	r.updatedAt = time.Now()
}

// Queries returns the derived search queries.
func (r *Run) Queries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.queries
}

// SetCandidates records the deduplicated search results.
func (r *Run) SetCandidates(candidates []types.CandidateRepository) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if candidates == nil {
		candidates = []types.CandidateRepository{}
	}
	r.candidates = candidates
	r.updatedAt = time.Now()
}

// Candidates returns the deduplicated search results, nil before searching.
func (r *Run) Candidates() []types.CandidateRepository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.candidates
}

// SetResults records the ranked repositories.
func (r *Run) SetResults(results *types.RankedRepositories) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = results
	r.updatedAt = time.Now()
}

// Results returns the ranked repositories, or nil before ranking completes.
func (r *Run) Results() *types.RankedRepositories {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.results
}

// StepCompleted reports whether the named pipeline step has produced its
// artifact on this run.
func (r *Run) StepCompleted(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stepCompletedLocked(name)
}

func (r *Run) stepCompletedLocked(name string) bool {
	switch name {
	case steps.StepIngestDocument:
		return r.documentText != ""
	case steps.StepAnalyzeRequirements:
		return r.profile != nil
	case steps.StepBuildQueries:
		return len(r.queries) > 0
	case steps.StepSearchRepositories:
		return r.candidates != nil
	case steps.StepRankRepositories:
		return r.results != nil
	default:
		// Repository detail is produced on demand and never recorded on the run
		return false
	}
}

// RunView is a JSON-safe snapshot of a run for API responses.
type RunView struct {
	ID             string                    `json:"id"`
	Status         Status                    `json:"status"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
	Profile        *types.RequirementProfile `json:"profile,omitempty"`
	Queries        []string                  `json:"queries,omitempty"`
	CandidateCount int                       `json:"candidate_count"`
	Error          string                    `json:"error,omitempty"`
	AvailableSteps []string                  `json:"available_steps"`
	BlockedSteps   []string                  `json:"blocked_steps"`
}

// View returns a consistent snapshot for API responses.
func (r *Run) View() RunView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RunView{
		ID:             r.ID.String(),
		Status:         r.status,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.updatedAt,
		Profile:        r.profile,
		Queries:        r.queries,
		CandidateCount: len(r.candidates),
		Error:          r.failure,
		AvailableSteps: steps.AvailableSteps(r.stepCompletedLocked),
		BlockedSteps:   steps.BlockedSteps(r.stepCompletedLocked),
	}
}
