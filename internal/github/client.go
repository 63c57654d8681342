// Package github provides the GitHub-backed search and repository metadata
// gateways used by the pipeline.
package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v66/github"

	"github.com/jonathan/repo-scout/internal/types"
)

// contributorCap bounds contributor enumeration to a single page. Exact
// counts beyond the cap are not needed for the report.
const contributorCap = 100

// Client wraps the GitHub API for repository search and metadata fetches.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub client. An empty token gives unauthenticated
// access with its lower rate limit; set GITHUB_TOKEN to raise it.
func NewClient(token string) *Client {
	client := gh.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Client{gh: client}
}

// Search executes one repository search query and returns candidates sorted
// by stars descending. minStars is appended as a search qualifier. An empty
// query is treated as "no useful query" and returns no results without
// calling the API.
func (c *Client) Search(ctx context.Context, query string, minStars, limit int) ([]types.CandidateRepository, error) {
	if query == "" {
		return nil, nil
	}

	q := query
	if minStars > 0 {
		q = fmt.Sprintf("%s stars:>=%d", query, minStars)
	}

	opts := &gh.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: limit},
	}

	result, _, err := c.gh.Search.Repositories(ctx, q, opts)
	if err != nil {
		return nil, &Error{Operation: "search", Target: query, Cause: err}
	}

	candidates := make([]types.CandidateRepository, 0, len(result.Repositories))
	for _, repo := range result.Repositories {
		candidates = append(candidates, toCandidate(repo))
	}
	return candidates, nil
}

// Metadata carries the repository record plus the counters only the full
// metadata endpoint returns.
type Metadata struct {
	Repository types.CandidateRepository
	Forks      int
	OpenIssues int
}

// GetMetadata fetches full metadata for one repository.
func (c *Client) GetMetadata(ctx context.Context, owner, name string) (*Metadata, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, &Error{Operation: "metadata", Target: owner + "/" + name, Cause: err}
	}

	return &Metadata{
		Repository: toCandidate(repo),
		Forks:      repo.GetForksCount(),
		OpenIssues: repo.GetOpenIssuesCount(),
	}, nil
}

// CountContributors returns the contributor count from the first page of
// results, capped at contributorCap.
func (c *Client) CountContributors(ctx context.Context, owner, name string) (int, error) {
	opts := &gh.ListContributorsOptions{
		ListOptions: gh.ListOptions{PerPage: contributorCap},
	}

	contributors, _, err := c.gh.Repositories.ListContributors(ctx, owner, name, opts)
	if err != nil {
		return 0, &Error{Operation: "contributors", Target: owner + "/" + name, Cause: err}
	}
	return len(contributors), nil
}

// GetReadme fetches and decodes the repository README.
func (c *Client) GetReadme(ctx context.Context, owner, name string) (string, error) {
	readme, _, err := c.gh.Repositories.GetReadme(ctx, owner, name, nil)
	if err != nil {
		return "", &Error{Operation: "readme", Target: owner + "/" + name, Cause: err}
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", &Error{Operation: "readme", Target: owner + "/" + name, Cause: err}
	}
	return content, nil
}

// toCandidate converts a GitHub API repository record to the pipeline type.
func toCandidate(repo *gh.Repository) types.CandidateRepository {
	return types.CandidateRepository{
		ID:          repo.GetID(),
		Owner:       repo.GetOwner().GetLogin(),
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		Description: repo.Description,
		Language:    repo.Language,
		Stars:       repo.GetStargazersCount(),
		PushedAt:    repo.GetPushedAt().Time,
		URL:         repo.GetHTMLURL(),
	}
}
