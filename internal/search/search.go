package search

import (
	"context"
	"log"

	"github.com/jonathan/repo-scout/internal/types"
)

// Gateway executes a single repository search query. Implementations return
// candidates sorted by popularity descending.
type Gateway interface {
	Search(ctx context.Context, query string, minStars, limit int) ([]types.CandidateRepository, error)
}

// Searcher runs query batches against a repository search gateway.
type Searcher struct {
	gateway       Gateway
	minStars      int
	perQueryLimit int
}

// NewSearcher creates a new Searcher instance.
func NewSearcher(gateway Gateway, minStars, perQueryLimit int) *Searcher {
	return &Searcher{
		gateway:       gateway,
		minStars:      minStars,
		perQueryLimit: perQueryLimit,
	}
}

// FindCandidates executes each query in order and merges the results into a
// deduplicated candidate list. An empty query is skipped without a gateway
// call; a failed query contributes zero results and never aborts the batch.
func (s *Searcher) FindCandidates(ctx context.Context, queries []string) []types.CandidateRepository {
	batches := make([][]types.CandidateRepository, 0, len(queries))

	for _, query := range queries {
		if query == "" {
			continue // no useful query
		}

		results, err := s.gateway.Search(ctx, query, s.minStars, s.perQueryLimit)
		if err != nil {
			log.Printf("search query %q failed: %v", query, err)
			continue // Skip failed queries gracefully
		}
		batches = append(batches, results)
	}

	return Dedupe(batches)
}
