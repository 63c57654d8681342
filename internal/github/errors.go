package github

import "fmt"

// Error represents a GitHub API failure for a single operation.
type Error struct {
	Operation string // search, metadata, contributors, readme
	Target    string // search query or owner/name
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("github %s failed for %q: %v", e.Operation, e.Target, e.Cause)
	}
	return fmt.Sprintf("github %s failed for %q", e.Operation, e.Target)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}
