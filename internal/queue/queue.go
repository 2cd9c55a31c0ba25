// Package queue provides the thread-safe priority queue feeding the
// dispatch worker.
package queue

import (
	"container/heap"
	"sync"
	"time"

	"github.com/zulandar/switchboard/internal/models"
)

// Queue orders pending messages by priority descending, then by enqueue
// order within a priority tier. The tie-break uses a monotonic sequence
// number; priority alone would leave equal-priority order undefined.
type Queue struct {
	mu       sync.Mutex
	items    itemHeap
	seq      uint64
	capacity int           // 0 means unbounded
	wake     chan struct{} // closed and replaced on every enqueue
}

type item struct {
	msg *models.Message
	seq uint64
}

// New returns a Queue. capacity <= 0 means unbounded; otherwise Enqueue
// reports false once capacity items are pending.
func New(capacity int) *Queue {
	return &Queue{
		capacity: capacity,
		wake:     make(chan struct{}),
	}
}

// Enqueue adds msg to the queue. It never blocks; it returns false when a
// bounded queue is full.
func (q *Queue) Enqueue(msg *models.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && q.items.Len() >= q.capacity {
		return false
	}
	q.seq++
	heap.Push(&q.items, item{msg: msg, seq: q.seq})

	// Wake every blocked Dequeue.
	close(q.wake)
	q.wake = make(chan struct{})
	return true
}

// Dequeue removes and returns the highest-priority message. With block set
// it waits up to timeout for an item and returns ok=false on timeout; with
// block unset it returns immediately.
func (q *Queue) Dequeue(block bool, timeout time.Duration) (*models.Message, bool) {
	deadline := time.Now().Add(timeout)
	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			it := heap.Pop(&q.items).(item)
			q.mu.Unlock()
			return it.msg, true
		}
		wake := q.wake
		q.mu.Unlock()

		if !block {
			return nil, false
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false
		}
		timer := time.NewTimer(remaining)
		select {
		case <-wake:
			timer.Stop()
		case <-timer.C:
			return nil, false
		}
	}
}

// Size returns the number of pending messages.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Clear discards all pending messages.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}

// itemHeap is a max-heap on (priority, -seq).
type itemHeap []item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].msg.Priority != h[j].msg.Priority {
		return h[i].msg.Priority > h[j].msg.Priority
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) { *h = append(*h, x.(item)) }

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
