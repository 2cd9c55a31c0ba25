package dispatch

import (
	"errors"
	"fmt"
)

// ErrQueueFull is returned synchronously by Enqueue and Broadcast when the
// bounded queue cannot accept another message.
var ErrQueueFull = errors.New("dispatch: queue full")

// ValidationError reports a malformed message rejected before it reaches
// the queue.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dispatch: invalid %s: %s", e.Field, e.Reason)
}
