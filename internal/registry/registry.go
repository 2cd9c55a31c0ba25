// Package registry loads and validates per-agent on-screen coordinates.
//
// Two JSON schemas are accepted, tried in fixed precedence with no merging:
// the flat schema ({"agents": {...}}) wins over the mode-nested schema
// ({"<mode>": {"<agent>": {"x": .., "y": ..}}}). The first schema that
// parses successfully provides the entire mapping.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Screen-bound heuristic for coordinate validation. Generous on purpose:
// multi-monitor layouts put real targets at large negative offsets.
const (
	MinCoord = -10000
	MaxCoord = 10000
)

// Source identifies which schema produced the active mapping.
type Source string

const (
	SourceFlat Source = "flat"
	SourceMode Source = "mode"
)

// Endpoint is one agent's registered coordinate and its validation state,
// fixed at load time.
type Endpoint struct {
	AgentID             string
	X, Y                int
	Valid               bool
	LastValidationError string
}

// Registry is the validated mapping from agent ID to on-screen coordinate.
// It is immutable between Reload calls; dispatch never mutates it.
type Registry struct {
	paths []string
	mode  string

	mu        sync.RWMutex
	source    Source
	endpoints map[string]Endpoint
}

// Load reads the first usable coordinate file from paths and returns a
// Registry. mode selects the agent layout when the mode-nested schema is in
// effect; it is ignored by the flat schema.
func Load(paths []string, mode string) (*Registry, error) {
	r := &Registry{paths: paths, mode: mode}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the configured sources, replacing the active mapping.
func (r *Registry) Reload() error {
	var firstErr error
	for _, path := range r.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("registry: read %s: %w", path, err)
			}
			continue
		}
		endpoints, source, err := parse(data, r.mode)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("registry: parse %s: %w", path, err)
			}
			continue
		}
		r.mu.Lock()
		r.endpoints = endpoints
		r.source = source
		r.mu.Unlock()
		return nil
	}
	if firstErr != nil {
		return firstErr
	}
	return fmt.Errorf("registry: no coordinate sources configured")
}

// Source reports which schema produced the active mapping.
func (r *Registry) Source() Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// lookup reads the endpoint for agentID in one critical section so callers
// never observe two different mappings across a concurrent Reload.
func (r *Registry) lookup(agentID string) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints[agentID]
	return ep, ok
}

// Validate checks the registered entry for agentID and returns whether it
// is usable, with a reason when it is not.
func (r *Registry) Validate(agentID string) (bool, string) {
	ep, ok := r.lookup(agentID)
	if !ok {
		return false, "not found"
	}
	if !ep.Valid {
		return false, ep.LastValidationError
	}
	return true, ""
}

// Get returns the validated coordinate for agentID. It revalidates on every
// call and returns ok=false rather than a stale or zero coordinate.
func (r *Registry) Get(agentID string) (x, y int, ok bool) {
	ep, found := r.lookup(agentID)
	if !found || !ep.Valid {
		return 0, 0, false
	}
	return ep.X, ep.Y, true
}

// Agents returns all registered endpoints sorted by agent ID.
func (r *Registry) Agents() []Endpoint {
	r.mu.RLock()
	eps := make([]Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		eps = append(eps, ep)
	}
	r.mu.RUnlock()
	sort.Slice(eps, func(i, j int) bool { return eps[i].AgentID < eps[j].AgentID })
	return eps
}

// AgentIDs returns the IDs of all registered agents sorted ascending,
// regardless of coordinate validity. Broadcast fan-out uses this.
func (r *Registry) AgentIDs() []string {
	eps := r.Agents()
	ids := make([]string, len(eps))
	for i, ep := range eps {
		ids[i] = ep.AgentID
	}
	return ids
}

// flat schema: {"agents": {"<id>": {"coordinates"|"chat_input_coordinates": [x, y]}}}
// Agent values decode in a second pass so one malformed entry invalidates
// only that agent, never its siblings.
type flatFile struct {
	Agents map[string]json.RawMessage `json:"agents"`
}

type flatAgent struct {
	Coordinates     []any `json:"coordinates"`
	ChatCoordinates []any `json:"chat_input_coordinates"`
}

// parse tries the flat schema first, then the mode-nested schema. The first
// schema that yields a non-empty mapping wins; schemas are never merged.
func parse(data []byte, mode string) (map[string]Endpoint, Source, error) {
	if eps, err := parseFlat(data); err == nil {
		return eps, SourceFlat, nil
	}
	eps, err := parseMode(data, mode)
	if err != nil {
		return nil, "", err
	}
	return eps, SourceMode, nil
}

func parseFlat(data []byte) (map[string]Endpoint, error) {
	var f flatFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Agents) == 0 {
		return nil, fmt.Errorf("no agents key")
	}
	endpoints := make(map[string]Endpoint, len(f.Agents))
	for id, blob := range f.Agents {
		var a flatAgent
		if err := json.Unmarshal(blob, &a); err != nil {
			endpoints[id] = newEndpoint(id, nil)
			continue
		}
		// The chat input coordinate is the typing target; plain
		// coordinates are the fallback for older files.
		raw := a.ChatCoordinates
		if len(raw) == 0 {
			raw = a.Coordinates
		}
		endpoints[id] = newEndpoint(id, raw)
	}
	return endpoints, nil
}

func parseMode(data []byte, mode string) (map[string]Endpoint, error) {
	var f map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	agents, ok := f[mode]
	if !ok || len(agents) == 0 {
		return nil, fmt.Errorf("mode %q not present", mode)
	}
	endpoints := make(map[string]Endpoint, len(agents))
	for id, blob := range agents {
		var fields map[string]any
		if err := json.Unmarshal(blob, &fields); err != nil {
			endpoints[id] = newEndpoint(id, nil)
			continue
		}
		raw := make([]any, 0, 2)
		if x, ok := fields["x"]; ok {
			raw = append(raw, x)
		}
		if y, ok := fields["y"]; ok {
			raw = append(raw, y)
		}
		endpoints[id] = newEndpoint(id, raw)
	}
	return endpoints, nil
}

// newEndpoint validates raw coordinate components and builds the Endpoint.
// A malformed entry invalidates only that agent, never the whole file.
func newEndpoint(id string, raw []any) Endpoint {
	x, y, reason := validateComponents(raw)
	return Endpoint{
		AgentID:             id,
		X:                   x,
		Y:                   y,
		Valid:               reason == "",
		LastValidationError: reason,
	}
}

// validateComponents applies the coordinate validation rules in order:
// component count, numeric type, screen bounds, and the (0,0) sentinel that
// distinguishes "never configured" from "configured at origin".
func validateComponents(raw []any) (x, y int, reason string) {
	if len(raw) < 2 {
		return 0, 0, "invalid coordinates"
	}
	xf, xok := asNumber(raw[0])
	yf, yok := asNumber(raw[1])
	if !xok || !yok {
		return 0, 0, "non-numeric coordinates"
	}
	x, y = int(xf), int(yf)
	if x < MinCoord || x > MaxCoord || y < MinCoord || y > MaxCoord {
		return x, y, "out of range"
	}
	if x == 0 && y == 0 {
		return 0, 0, "default/unconfigured coordinates"
	}
	return x, y, ""
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
