package dispatch

import (
	"log"
	"sync"
	"time"

	"github.com/zulandar/switchboard/internal/channel"
	"github.com/zulandar/switchboard/internal/history"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/queue"
	"github.com/zulandar/switchboard/internal/status"
)

// DefaultPollTimeout bounds how long one blocking dequeue waits, which is
// also the worst-case latency for Stop to take effect.
const DefaultPollTimeout = 250 * time.Millisecond

// Worker drains the queue in a single background goroutine, selecting a
// channel per message and recording the outcome. One message's failure
// never stops the loop.
type Worker struct {
	queue     *queue.Queue
	channels  map[channel.Kind]channel.DeliveryChannel
	tracker   *status.Tracker
	store     *history.Store
	threshold int
	poll      time.Duration

	// OnFailure, if set, is invoked after a delivery attempt fails.
	// Called from the worker goroutine; must not block for long.
	OnFailure func(msg *models.Message, err error)

	counters counters

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewWorker builds a Worker. channels is the closed set of delivery
// variants keyed by kind; store may be nil for no persistence.
func NewWorker(q *queue.Queue, channels map[channel.Kind]channel.DeliveryChannel,
	tracker *status.Tracker, store *history.Store, threshold int, poll time.Duration) *Worker {
	if threshold <= 0 {
		threshold = channel.DefaultThreshold
	}
	if poll <= 0 {
		poll = DefaultPollTimeout
	}
	return &Worker{
		queue:     q,
		channels:  channels,
		tracker:   tracker,
		store:     store,
		threshold: threshold,
		poll:      poll,
	}
}

// Start launches the dispatch loop. It is idempotent: calling it while
// running does not spawn a second loop.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(w.stop, w.done)
}

// Stop signals the loop and waits for it to exit. It does not interrupt an
// in-flight delivery. Calling Stop on a stopped worker is a no-op.
// running stays set until the loop has fully drained so a concurrent Start
// cannot spawn a second loop alongside the exiting one.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	done := w.done
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
	w.mu.Unlock()

	<-done

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// Running reports whether the dispatch loop is active.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Worker) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}
		msg, ok := w.queue.Dequeue(true, w.poll)
		if !ok {
			continue
		}
		w.process(msg)
	}
}

// process attempts delivery of one message and records the outcome. Errors
// are attached to the message and the history store rather than swallowed.
func (w *Worker) process(msg *models.Message) {
	kind := channel.Choose(msg, w.threshold)
	ch, ok := w.channels[kind]
	if !ok {
		// Unregistered variant; fall back to whichever channel exists.
		for k, c := range w.channels {
			kind, ch = k, c
			break
		}
	}
	if ch == nil {
		msg.Status = models.StatusFailed
		w.counters.record(false)
		log.Printf("dispatch: no delivery channel registered for message %s", msg.ID)
		return
	}

	delivered, err := ch.Deliver(msg)
	if delivered {
		msg.Status = models.StatusSent
		w.tracker.Touch(msg.Recipient)
	} else {
		msg.Status = models.StatusFailed
		log.Printf("dispatch: deliver %s to %s via %s failed: %v", msg.ID, msg.Recipient, kind, err)
	}
	w.counters.record(delivered)

	if recErr := w.store.Record(msg, string(kind), err); recErr != nil {
		log.Printf("dispatch: history record for %s: %v", msg.ID, recErr)
	}
	if !delivered && w.OnFailure != nil {
		w.OnFailure(msg, err)
	}
}
