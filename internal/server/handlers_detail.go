package server

import (
	"log"
	"net/http"

	"github.com/jonathan/repo-scout/internal/report"
)

// handleRepositoryDetail produces the on-demand fit report for one
// repository, assessed against the run's requirement profile.
func (s *Server) handleRepositoryDetail(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	owner := r.PathValue("owner")
	repo := r.PathValue("repo")
	if owner == "" || repo == "" {
		s.errorResponse(w, http.StatusBadRequest, "owner and repo are required")
		return
	}

	profile := entry.run.Profile()
	if profile == nil {
		s.errorResponse(w, http.StatusConflict, "run has no requirement profile")
		return
	}

	analyzer := report.NewAnalyzer(s.repos, s.client, s.cfg.CallTimeout)
	detail, err := analyzer.AnalyzeRepository(r.Context(), owner, repo, profile)
	if err != nil {
		log.Printf("Repository detail failed for %s/%s: %v", owner, repo, err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, detail)
}
