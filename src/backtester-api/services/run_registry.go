package services

import (
	"sync"

	"github.com/google/uuid"
)

// RunRegistry keeps finished runs for the HTTP surface. It is the only state
// shared between concurrent runs.
type RunRegistry struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*BacktestResult
	ids  []uuid.UUID
}

func (r *RunRegistry) Add(result *BacktestResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.runs[result.ID]; !found {
		r.ids = append(r.ids, result.ID)
	}

	r.runs[result.ID] = result
}

func (r *RunRegistry) Get(id uuid.UUID) (*BacktestResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, found := r.runs[id]
	return result, found
}

// List returns the runs in the order they were added.
func (r *RunRegistry) List() []*BacktestResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*BacktestResult, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.runs[id])
	}

	return out
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{
		runs: make(map[uuid.UUID]*BacktestResult),
	}
}
