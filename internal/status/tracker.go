// Package status tracks advisory per-agent liveness state.
package status

import (
	"sync"
	"time"

	"github.com/zulandar/switchboard/internal/models"
)

// Tracker is an in-memory map of agent liveness records. Stalling an agent
// is advisory metadata for callers: it never removes or fails messages
// already queued for that agent.
type Tracker struct {
	mu     sync.Mutex
	agents map[string]models.AgentStatus
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{agents: make(map[string]models.AgentStatus)}
}

// Update records the latest observation for agentID, refreshing LastSeen.
// currentTask is kept as-is; pass the previous value to leave it unchanged.
func (t *Tracker) Update(agentID string, state models.AgentState, x, y int, currentTask string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.agents[agentID] = models.AgentStatus{
		AgentID:     agentID,
		State:       state,
		LastSeen:    time.Now(),
		X:           x,
		Y:           y,
		CurrentTask: currentTask,
	}
}

// Touch refreshes LastSeen for an agent, marking it ACTIVE, without
// disturbing its cached coordinate or task. Unknown agents get a fresh
// record.
func (t *Tracker) Touch(agentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.agents[agentID]
	if !ok {
		rec = models.AgentStatus{AgentID: agentID}
	}
	rec.State = models.AgentActive
	rec.LastSeen = time.Now()
	t.agents[agentID] = rec
}

// Get returns the status record for agentID.
func (t *Tracker) Get(agentID string) (models.AgentStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.agents[agentID]
	return rec, ok
}

// Stall flips an existing agent to STALLED. It reports false for agents
// that have never been updated.
func (t *Tracker) Stall(agentID string) bool {
	return t.setState(agentID, models.AgentStalled)
}

// Unstall flips an existing agent back to ACTIVE. It reports false for
// agents that have never been updated.
func (t *Tracker) Unstall(agentID string) bool {
	return t.setState(agentID, models.AgentActive)
}

func (t *Tracker) setState(agentID string, state models.AgentState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.agents[agentID]
	if !ok {
		return false
	}
	rec.State = state
	t.agents[agentID] = rec
	return true
}

// Snapshot returns a copy of all tracked agents.
func (t *Tracker) Snapshot() map[string]models.AgentStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]models.AgentStatus, len(t.agents))
	for id, rec := range t.agents {
		out[id] = rec
	}
	return out
}

// ActiveCount returns the number of agents currently marked ACTIVE.
func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, rec := range t.agents {
		if rec.State == models.AgentActive {
			n++
		}
	}
	return n
}

// MarkStale flips ACTIVE agents whose LastSeen is older than maxAge to
// STALLED and returns their IDs.
func (t *Tracker) MarkStale(maxAge time.Duration) []string {
	cutoff := time.Now().Add(-maxAge)
	t.mu.Lock()
	defer t.mu.Unlock()
	var stalled []string
	for id, rec := range t.agents {
		if rec.State == models.AgentActive && rec.LastSeen.Before(cutoff) {
			rec.State = models.AgentStalled
			t.agents[id] = rec
			stalled = append(stalled, id)
		}
	}
	return stalled
}
