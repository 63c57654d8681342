package ranking

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/repo-scout/internal/llm"
	"github.com/jonathan/repo-scout/internal/types"
)

const (
	// MaxCandidatesToScore bounds how many deduplicated candidates get scored
	MaxCandidatesToScore = 10
	// MaxRankedResults bounds the final ranking length
	MaxRankedResults = 10
	// DefaultCallTimeout bounds each scoring call so one hung response cannot
	// stall the whole fan-out
	DefaultCallTimeout = 30 * time.Second
)

// EmptyResultNote explains an empty ranking to the caller.
const EmptyResultNote = "No candidate repository produced an informative coverage assessment. Refine the project description or answer the clarifying questions, then search again."

// Ranker fans coverage scoring out over candidates and assembles the
// filtered, sorted ranking.
type Ranker struct {
	client      llm.Client
	callTimeout time.Duration
}

// NewRanker creates a Ranker. A non-positive timeout falls back to
// DefaultCallTimeout.
func NewRanker(client llm.Client, callTimeout time.Duration) *Ranker {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Ranker{
		client:      client,
		callTimeout: callTimeout,
	}
}

// RankByCoverage scores up to MaxCandidatesToScore candidates concurrently
// and returns them filtered and sorted by coverage percentage descending.
// An empty ranking is not an error; the Note field explains it.
func (r *Ranker) RankByCoverage(ctx context.Context, candidates []types.CandidateRepository, profile *types.RequirementProfile) *types.RankedRepositories {
	if len(candidates) > MaxCandidatesToScore {
		candidates = candidates[:MaxCandidatesToScore]
	}

	// Launch all, await all. ScoreCoverage never errors, so the group only
	// joins the fan-out; each goroutine writes its own slot.
	scored := make([]types.RankedRepository, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i := range candidates {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, r.callTimeout)
			defer cancel()

			coverage := ScoreCoverage(callCtx, &candidates[i], profile, r.client)
			scored[i] = types.RankedRepository{
				Repository: candidates[i],
				Coverage:   coverage,
			}
			return nil
		})
	}
	_ = g.Wait()

	// Quality gate: drop candidates the model said nothing useful about,
	// including every fallback-scored one
	ranked := make([]types.RankedRepository, 0, len(scored))
	for _, item := range scored {
		if len(item.Coverage.Covers) == 0 || isFallbackCoverage(item.Coverage) {
			continue
		}
		ranked = append(ranked, item)
	}

	// Stable sort: ties keep dedup order, which favors the first query
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Coverage.CoveragePercentage > ranked[j].Coverage.CoveragePercentage
	})

	if len(ranked) > MaxRankedResults {
		ranked = ranked[:MaxRankedResults]
	}

	result := &types.RankedRepositories{Repositories: ranked}
	if len(ranked) == 0 {
		result.Note = EmptyResultNote
	}
	return result
}

// isFallbackCoverage reports whether covers is exactly the fallback marker.
func isFallbackCoverage(coverage types.CoverageResult) bool {
	return len(coverage.Covers) == 1 && coverage.Covers[0] == FallbackCoversMarker
}
