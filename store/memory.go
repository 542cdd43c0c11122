// Package store keeps completed audit runs in memory so the API can list
// and re-fetch them. Nothing here survives a process restart; the store
// exists for the lifetime of the server only.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/recon"
)

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one completed audit with its submission metadata.
type Run struct {
	ID          string
	SubmittedAt time.Time
	Filter      clock.Range
	Result      *recon.Result
}

// =============================================================================
// MEMORY REGISTRY - In-memory implementation
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	runs map[string]Run
}

func NewMemory() *Memory {
	return &Memory{runs: make(map[string]Run)}
}

// Save registers a finished run and returns its generated ID.
func (m *Memory) Save(_ context.Context, filter clock.Range, result *recon.Result) (Run, error) {
	run := Run{
		ID:          uuid.NewString(),
		SubmittedAt: time.Now().UTC(),
		Filter:      filter,
		Result:      result,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return run, nil
}

func (m *Memory) Get(_ context.Context, id string) (Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return run, nil
}

// List returns all runs, newest first.
func (m *Memory) List(_ context.Context) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(a, b int) bool {
		return runs[a].SubmittedAt.After(runs[b].SubmittedAt)
	})
	return runs, nil
}
