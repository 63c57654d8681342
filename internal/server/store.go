package server

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/repo-scout/internal/pipeline"
)

// runEntry pairs a pipeline run with the event log of its current rank
// attempt. The log is swapped on retry so subscribers never replay a failed
// attempt's events.
type runEntry struct {
	run *pipeline.Run

	mu     sync.Mutex
	events *eventLog
}

// log returns the event log of the current rank attempt.
func (e *runEntry) log() *eventLog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events
}

// resetLog installs a fresh event log for a retry attempt. The previous log
// is closed so any stale subscribers finish their streams.
func (e *runEntry) resetLog() {
	e.mu.Lock()
	old := e.events
	e.events = newEventLog()
	e.mu.Unlock()

	old.Close()
}

// RunStore is the in-memory registry of pipeline runs. Runs live for the
// lifetime of the server process; there is no persistence.
type RunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*runEntry
}

// NewRunStore creates an empty run registry.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[uuid.UUID]*runEntry),
	}
}

// Add registers a run and creates its event log.
func (s *RunStore) Add(run *pipeline.Run) *runEntry {
	entry := &runEntry{
		run:    run,
		events: newEventLog(),
	}

	s.mu.Lock()
	s.runs[run.ID] = entry
	s.mu.Unlock()

	return entry
}

// Get returns the entry for a run ID, or nil if unknown.
func (s *RunStore) Get(id uuid.UUID) *runEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[id]
}

// List returns all registered runs ordered by creation time, newest first.
func (s *RunStore) List() []*pipeline.Run {
	s.mu.RLock()
	runs := make([]*pipeline.Run, 0, len(s.runs))
	for _, entry := range s.runs {
		runs = append(runs, entry.run)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}

// Delete removes a run and closes its event log. Returns false if the run
// was not registered.
func (s *RunStore) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	entry, ok := s.runs[id]
	if ok {
		delete(s.runs, id)
	}
	s.mu.Unlock()

	if ok {
		entry.log().Close()
	}
	return ok
}
