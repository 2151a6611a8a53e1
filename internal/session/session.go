// Package session tracks per-operator conversation state for multi-step
// chat flows. Each operator has at most one active flow; starting a new one
// replaces the old.
package session

import (
	"sync"

	"communitybridge/internal/model"
)

// Step is the input the active flow is waiting for.
type Step int

const (
	StepNone Step = iota

	// StepEmail waits for the new email value after a record was selected.
	StepEmail

	// Video comment wizard, in prompt order.
	StepVideoChannel
	StepVideoLink
	StepVideoText
	StepVideoProfile
	StepVideoAuthor
)

// State is the progress of one operator's active flow.
type State struct {
	Step Step

	// PageID is the record targeted by a pending value entry.
	PageID string

	// Video accumulates wizard answers until the final step persists them.
	Video model.VideoComment
}

// Manager is a concurrency-safe map of operator id to flow state.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]State
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]State)}
}

// Get returns the operator's active flow state, if any.
func (m *Manager) Get(operator int64) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[operator]
	return state, ok
}

// Set replaces the operator's flow state.
func (m *Manager) Set(operator int64, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[operator] = state
}

// Clear ends the operator's active flow. Clearing an idle operator is a
// no-op.
func (m *Manager) Clear(operator int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, operator)
}
