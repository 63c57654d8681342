package search

import "github.com/jonathan/repo-scout/internal/types"

// Dedupe merges per-query result batches, in batch order, into a single list
// unique by repository identity. The first occurrence wins: a repository
// found by two queries keeps the position its first query gave it.
// Idempotent: deduplicating an already-unique list changes nothing.
func Dedupe(batches [][]types.CandidateRepository) []types.CandidateRepository {
	unique := make([]types.CandidateRepository, 0)
	seen := make(map[int64]bool)
	for _, batch := range batches {
		for _, repo := range batch {
			if seen[repo.ID] {
				continue
			}
			unique = append(unique, repo)
			seen[repo.ID] = true
		}
	}
	return unique
}
