// Package server provides the HTTP REST API for the repo scout pipeline.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/repo-scout/internal/pipeline"
	"github.com/jonathan/repo-scout/internal/report"
)

// ErrRunNotFound indicates the requested run does not exist
type ErrRunNotFound struct {
	RunID uuid.UUID
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("run not found: %s", e.RunID)
}

// ErrResultsNotReady indicates ranked results were requested before the run finished
type ErrResultsNotReady struct {
	RunID  uuid.UUID
	Status pipeline.Status
}

func (e *ErrResultsNotReady) Error() string {
	return fmt.Sprintf("results not ready for run %s (status %s)", e.RunID, e.Status)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrValidation, *pipeline.AnswerError:
		return http.StatusBadRequest
	case *ErrRunNotFound:
		return http.StatusNotFound
	case *ErrResultsNotReady, *pipeline.TransitionError:
		return http.StatusConflict
	case *report.FetchError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
