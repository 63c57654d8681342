package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/repo-scout/internal/analysis"
	"github.com/jonathan/repo-scout/internal/ingestion"
	"github.com/jonathan/repo-scout/internal/pipeline"
	"github.com/jonathan/repo-scout/internal/types"
)

// maxUploadBytes caps the size of an uploaded statement-of-work document.
const maxUploadBytes = 10 << 20 // 10 MiB

// RunCreateRequest represents the JSON request to create a new run.
// Multipart uploads provide the document as a "sow" file field instead.
type RunCreateRequest struct {
	SOWURL  string `json:"sow_url,omitempty"`
	SOWText string `json:"sow_text,omitempty"`
	Format  string `json:"format,omitempty"`
}

// RunCreateResponse represents the response for creating a run
type RunCreateResponse struct {
	Run       pipeline.RunView           `json:"run"`
	Questions []types.ClarifyingQuestion `json:"questions,omitempty"`
}

// RunListResponse represents the response for listing runs
type RunListResponse struct {
	Runs []pipeline.RunView `json:"runs"`
}

// handleCreateRun ingests a statement of work, extracts its requirement
// profile, and registers a new run. When the profile raises no clarifying
// questions the search-and-rank phase starts immediately; otherwise the run
// stays idle until answers arrive.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	text, metadata, err := s.ingestRequest(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if strings.TrimSpace(text) == "" {
		s.errorResponse(w, http.StatusBadRequest, "document is empty after extraction")
		return
	}

	// Analyze synchronously so the response can carry clarifying questions
	profile, err := analysis.AnalyzeRequirements(r.Context(), text, s.client)
	if err != nil {
		status := http.StatusBadGateway
		var validationErr *analysis.ValidationError
		if errors.As(err, &validationErr) {
			status = http.StatusUnprocessableEntity
		}
		s.errorResponse(w, status, "requirement analysis failed: "+err.Error())
		return
	}

	run := pipeline.NewRun()
	run.SetDocument(text, metadata)
	run.SetProfile(profile)
	entry := s.runs.Add(run)

	// No open questions: the rank phase can start right away
	if len(profile.ClarifyingQuestions) == 0 {
		if err := run.Start(); err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		s.startRankPhase(entry)
	}

	log.Printf("Created run %s (status %s, %d clarifying questions)",
		run.ID, run.Status(), len(profile.ClarifyingQuestions))

	s.jsonResponse(w, http.StatusCreated, RunCreateResponse{
		Run:       run.View(),
		Questions: profile.ClarifyingQuestions,
	})
}

// ingestRequest extracts the document text and metadata from either a
// multipart file upload or a JSON body.
func (s *Server) ingestRequest(r *http.Request) (string, *ingestion.Metadata, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		return s.ingestUpload(r)
	}

	var req RunCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", nil, &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}

	switch {
	case req.SOWURL != "" && req.SOWText != "":
		return "", nil, &ErrValidation{Field: "sow_url", Message: "sow_url and sow_text are mutually exclusive"}
	case req.SOWURL != "":
		text, metadata, err := ingestion.IngestFromURL(r.Context(), req.SOWURL, s.cfg.UseBrowser, false)
		if err != nil {
			return "", nil, &ErrValidation{Field: "sow_url", Message: err.Error()}
		}
		return text, metadata, nil
	case req.SOWText != "":
		text := ingestion.CleanText(req.SOWText)
		metadata := ingestion.NewMetadata(text, "")
		metadata.Format = "txt"
		return text, metadata, nil
	default:
		return "", nil, &ErrValidation{Field: "sow_url", Message: "one of sow_url, sow_text, or a sow file upload is required"}
	}
}

// ingestUpload reads the "sow" file field and extracts its text.
func (s *Server) ingestUpload(r *http.Request) (string, *ingestion.Metadata, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, &ErrValidation{Field: "sow", Message: "invalid multipart form: " + err.Error()}
	}

	file, header, err := r.FormFile("sow")
	if err != nil {
		return "", nil, &ErrValidation{Field: "sow", Message: "missing sow file field"}
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return "", nil, &ErrValidation{Field: "sow", Message: "failed to read upload: " + err.Error()}
	}

	format := ingestion.Format(r.FormValue("format"))
	if format == "" {
		format = ingestion.DetectFormat(data, header.Filename)
	}

	raw, err := ingestion.ExtractText(data, format)
	if err != nil {
		return "", nil, &ErrValidation{Field: "sow", Message: "text extraction failed: " + err.Error()}
	}

	text := ingestion.CleanText(raw)
	metadata := ingestion.NewMetadata(text, "")
	metadata.Format = string(format)
	return text, metadata, nil
}

// handleListRuns returns views of every registered run, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	runs := s.runs.List()
	views := make([]pipeline.RunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, run.View())
	}
	s.jsonResponse(w, http.StatusOK, RunListResponse{Runs: views})
}

// handleGetRun returns the current view of a single run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, entry.run.View())
}

// handleDeleteRun removes a run from the registry.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	if !s.runs.Delete(id) {
		err := &ErrRunNotFound{RunID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleSubmitAnswers records clarifying-question answers and starts the
// search-and-rank phase.
func (s *Server) handleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	var answers types.AnswerSet
	if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := entry.run.SetAnswers(&answers); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if err := entry.run.Start(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.startRankPhase(entry)

	s.jsonResponse(w, http.StatusAccepted, entry.run.View())
}

// handleGetResults returns the ranked repositories once the run succeeds.
func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	run := entry.run
	if run.Status() != pipeline.StatusSucceeded {
		err := &ErrResultsNotReady{RunID: run.ID, Status: run.Status()}
		message := err.Error()
		if failure := run.Failure(); failure != "" {
			message += ": " + failure
		}
		s.errorResponse(w, HTTPStatus(err), message)
		return
	}

	s.jsonResponse(w, http.StatusOK, run.Results())
}

// handleRetryRun restarts the search-and-rank phase of a failed run.
func (s *Server) handleRetryRun(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	if err := entry.run.Retry(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	entry.resetLog()
	s.startRankPhase(entry)

	s.jsonResponse(w, http.StatusAccepted, entry.run.View())
}

// handleRunEvents streams run progress as Server-Sent Events. The recorded
// history is replayed first so late subscribers see every step.
func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	history, live, cancel := entry.log().Subscribe()
	defer cancel()

	for _, event := range history {
		if err := sse.WriteEvent("step", event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
			return
		}
	}

	for {
		select {
		case event, open := <-live:
			if !open {
				// Rank phase finished; report the terminal status
				run := entry.run
				if failure := run.Failure(); failure != "" {
					sse.WriteError(failure)
				}
				sse.WriteComplete(run.ID.String(), string(run.Status()))
				return
			}
			if err := sse.WriteEvent("step", event); err != nil {
				log.Printf("Error writing SSE event: %v", err)
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// startRankPhase launches the search-and-rank phase in the background,
// publishing progress into the run's event log. The log of the launching
// attempt is captured here so a later retry cannot redirect it.
func (s *Server) startRankPhase(entry *runEntry) {
	events := entry.log()
	opts := pipeline.RunOptions{
		MinStars:      s.cfg.MinStars,
		PerQueryLimit: s.cfg.PerQueryLimit,
		CallTimeout:   s.cfg.CallTimeout,
		OnProgress:    events.Publish,
	}

	go func() {
		defer events.Close()
		if err := pipeline.RankRequirements(context.Background(), entry.run, opts, s.client, s.gateway); err != nil {
			log.Printf("Rank phase failed for run %s: %v", entry.run.ID, err)
		}
	}()
}

// lookupRun resolves the {id} path value to a registered run, writing the
// error response itself when the ID is invalid or unknown.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*runEntry, bool) {
	id, ok := s.parseRunID(w, r)
	if !ok {
		return nil, false
	}

	entry := s.runs.Get(id)
	if entry == nil {
		err := &ErrRunNotFound{RunID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return nil, false
	}
	return entry, true
}

// parseRunID parses the {id} path value, writing a 400 response on failure.
func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Run ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return uuid.Nil, false
	}
	return id, true
}
