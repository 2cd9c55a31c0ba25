// Package dispatch contains the core delivery engine: the priority queue
// consumer, outcome accounting, and the coordinator facade callers enqueue
// through.
package dispatch

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zulandar/switchboard/internal/channel"
	"github.com/zulandar/switchboard/internal/history"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/queue"
	"github.com/zulandar/switchboard/internal/registry"
	"github.com/zulandar/switchboard/internal/status"
)

// Opts configures a Coordinator. Registry is required; everything else has
// a usable default.
type Opts struct {
	Registry      *registry.Registry
	Tracker       *status.Tracker             // nil: a fresh tracker is created
	Store         *history.Store              // nil: no persistence
	Automator     channel.Automator           // nil: channel.DefaultAutomator
	InboxRoot     string                      // file-drop root directory
	QueueCapacity int                         // 0: unbounded
	Threshold     int                         // channel selection cutoff, bytes
	PollTimeout   time.Duration               // worker dequeue timeout
	GUI           channel.GUIOpts             // typing pacing
	OnFailure     func(*models.Message, error) // failure hook (notifications)
}

// Coordinator composes the registry, queue, channels, tracker, and worker
// into the single object callers interact with.
type Coordinator struct {
	registry *registry.Registry
	queue    *queue.Queue
	tracker  *status.Tracker
	worker   *Worker

	enqueued atomic.Int64
}

// NewCoordinator wires the dispatch engine. All collaborators are explicit;
// nothing is reached through package globals.
func NewCoordinator(opts Opts) (*Coordinator, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("dispatch: registry is required")
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = status.NewTracker()
	}

	q := queue.New(opts.QueueCapacity)
	channels := map[channel.Kind]channel.DeliveryChannel{
		channel.KindGUI:  channel.NewGUIInjectionChannel(opts.Registry, opts.Automator, opts.GUI),
		channel.KindFile: channel.NewFileDropChannel(opts.InboxRoot),
	}
	worker := NewWorker(q, channels, tracker, opts.Store, opts.Threshold, opts.PollTimeout)
	worker.OnFailure = opts.OnFailure

	return &Coordinator{
		registry: opts.Registry,
		queue:    q,
		tracker:  tracker,
		worker:   worker,
	}, nil
}

// Enqueue validates the message shape and places it on the queue. The
// returned ID identifies the message in history and logs. Validation
// failures and queue capacity are reported synchronously; delivery failures
// happen later, on the worker.
func (c *Coordinator) Enqueue(sender, recipient, content string, typ models.MessageType,
	priority models.Priority, metadata map[string]string) (string, error) {

	if sender == "" {
		return "", &ValidationError{Field: "sender", Reason: "must not be empty"}
	}
	if recipient == "" {
		return "", &ValidationError{Field: "recipient", Reason: "must not be empty"}
	}
	if recipient == models.BroadcastRecipient {
		return "", &ValidationError{Field: "recipient", Reason: "use Broadcast for ALL"}
	}
	if content == "" {
		return "", &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if _, err := models.ParseMessageType(string(typ)); err != nil {
		return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown value %q", string(typ))}
	}
	if priority < models.PriorityLow || priority > models.PriorityUrgent {
		return "", &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown value %d", int(priority))}
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
		Type:      typ,
		Priority:  priority,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}
	if !c.queue.Enqueue(msg) {
		return "", ErrQueueFull
	}
	c.enqueued.Add(1)
	return msg.ID, nil
}

// Broadcast enqueues one copy of the message per registered agent and
// returns the IDs enqueued so far. On queue exhaustion it returns the IDs
// that made it in along with ErrQueueFull.
func (c *Coordinator) Broadcast(sender, content string, typ models.MessageType,
	priority models.Priority, metadata map[string]string) ([]string, error) {

	agents := c.registry.AgentIDs()
	if len(agents) == 0 {
		return nil, fmt.Errorf("dispatch: no agents registered for broadcast")
	}

	ids := make([]string, 0, len(agents))
	for _, agentID := range agents {
		id, err := c.Enqueue(sender, agentID, content, typ, priority, metadata)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Start launches the background dispatch worker. Idempotent.
func (c *Coordinator) Start() { c.worker.Start() }

// Stop gracefully stops the worker, waiting for an in-flight delivery to
// finish. No-op if never started.
func (c *Coordinator) Stop() { c.worker.Stop() }

// Stats returns a snapshot of dispatch counters.
func (c *Coordinator) Stats() Metrics {
	total, successful, failed := c.worker.counters.snapshot()
	return Metrics{
		Total:        total,
		Successful:   successful,
		Failed:       failed,
		ActiveAgents: c.tracker.ActiveCount(),
		QueueDepth:   c.queue.Size(),
	}
}

// Tracker exposes the agent status tracker for callers that display or
// sweep liveness state.
func (c *Coordinator) Tracker() *status.Tracker { return c.tracker }

// WaitIdle blocks until every enqueued message has been processed or the
// timeout elapses. It reports whether the engine went idle.
func (c *Coordinator) WaitIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.idle() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return c.idle()
}

func (c *Coordinator) idle() bool {
	total, _, _ := c.worker.counters.snapshot()
	return c.queue.Size() == 0 && total >= c.enqueued.Load()
}
