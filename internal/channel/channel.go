// Package channel implements message delivery to agent endpoints, either by
// synthesizing GUI input at a registered coordinate or by dropping an
// envelope file into the agent's inbox directory.
package channel

import (
	"github.com/zulandar/switchboard/internal/models"
)

// Kind identifies a delivery channel.
type Kind string

const (
	KindGUI  Kind = "gui"
	KindFile Kind = "file"
)

// DefaultThreshold is the content length at or below which the file channel
// is preferred over GUI injection.
const DefaultThreshold = 100

// DeliveryChannel attempts delivery of a single message. Implementations
// return (false, err) on failure and never panic. Retry policy belongs to
// the caller, not the channel.
type DeliveryChannel interface {
	Kind() Kind
	Deliver(msg *models.Message) (bool, error)
}

// Choose selects the channel kind for msg. A "channel" metadata entry
// forces the choice; otherwise content at or below threshold bytes goes to
// the lightweight file channel and anything longer gets GUI injection. The
// point is to keep trivial coordination pings from stealing pointer focus.
func Choose(msg *models.Message, threshold int) Kind {
	switch msg.Metadata[models.MetaChannel] {
	case string(KindGUI):
		return KindGUI
	case string(KindFile):
		return KindFile
	}
	if len(msg.Content) <= threshold {
		return KindFile
	}
	return KindGUI
}
