package models

import "time"

// AgentState is the advisory liveness state of an agent.
type AgentState string

const (
	AgentActive  AgentState = "ACTIVE"
	AgentStalled AgentState = "STALLED"
	AgentUnknown AgentState = "UNKNOWN"
)

// AgentStatus is the tracked liveness record for one agent. It is advisory
// metadata for callers and dashboards; it never affects queued messages.
type AgentStatus struct {
	AgentID     string
	State       AgentState
	LastSeen    time.Time
	X, Y        int    // cached coordinate copy for display
	CurrentTask string // optional
}
