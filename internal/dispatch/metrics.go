package dispatch

import "sync"

// Metrics is a point-in-time snapshot of dispatch counters.
type Metrics struct {
	Total        int64 `json:"total"`
	Successful   int64 `json:"successful"`
	Failed       int64 `json:"failed"`
	ActiveAgents int   `json:"active_agents"`
	QueueDepth   int   `json:"queue_depth"`
}

// counters is the shared mutable metric state, mutated only by the worker
// after a delivery attempt completes.
type counters struct {
	mu         sync.Mutex
	total      int64
	successful int64
	failed     int64
}

func (c *counters) record(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	if ok {
		c.successful++
	} else {
		c.failed++
	}
}

func (c *counters) snapshot() (total, successful, failed int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, c.successful, c.failed
}
