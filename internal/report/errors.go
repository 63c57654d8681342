package report

import "fmt"

// FetchError represents a GitHub fetch failure the detail report cannot
// proceed without.
type FetchError struct {
	Resource   string
	Repository string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to fetch %s for %s: %v", e.Resource, e.Repository, e.Cause)
	}
	return fmt.Sprintf("failed to fetch %s for %s", e.Resource, e.Repository)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
