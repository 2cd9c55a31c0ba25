// Package notify escalates dispatch failures and agent stalls to humans:
// a shell command hook, Discord, and Slack are supported and can be fanned
// out together. All notification paths are best-effort; dispatch never
// depends on them succeeding.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Severity classifies an escalation event.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is one escalation: a failed delivery or a stalled agent.
type Event struct {
	MessageID string // empty for stall events
	AgentID   string
	Channel   string // delivery channel kind, empty for stall events
	Reason    string
	Severity  Severity
	Time      time.Time
}

// Summary renders the one-line form used by every notifier.
func (e Event) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] agent %s", strings.ToUpper(string(e.Severity)), e.AgentID)
	if e.MessageID != "" {
		fmt.Fprintf(&b, ": message %s", e.MessageID)
		if e.Channel != "" {
			fmt.Fprintf(&b, " (%s)", e.Channel)
		}
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

// Notifier delivers an escalation event to one destination.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// CommandNotifier shells out to a configured command template, replacing
// placeholders with event values.
type CommandNotifier struct {
	Command string // e.g. "notify-send 'Switchboard' '{{.Summary}}'"
}

// Notify runs the command through sh. The template supports {{.Agent}},
// {{.MessageID}}, {{.Reason}}, {{.Severity}}, and {{.Summary}}.
func (n *CommandNotifier) Notify(ctx context.Context, ev Event) error {
	if n.Command == "" {
		return nil
	}
	r := strings.NewReplacer(
		"{{.Agent}}", ev.AgentID,
		"{{.MessageID}}", ev.MessageID,
		"{{.Reason}}", ev.Reason,
		"{{.Severity}}", string(ev.Severity),
		"{{.Summary}}", ev.Summary(),
	)
	cmd := exec.CommandContext(ctx, "sh", "-c", r.Replace(n.Command))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify: command failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Multi fans an event out to several notifiers, collecting every error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
