// Package slack implements the notify.Notifier interface over the Slack
// Web API.
package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/zulandar/switchboard/internal/notify"
)

// api abstracts the slack.Client methods we use, enabling test mocks.
type api interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts escalation events to a single Slack channel.
type Notifier struct {
	client    api
	channelID string
}

// New builds a Notifier from a bot token and target channel ID.
func New(botToken, channelID string) (*Notifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("slack: channel ID is required")
	}
	return &Notifier{client: slack.New(botToken), channelID: channelID}, nil
}

// Notify posts the event summary to the configured channel.
func (n *Notifier) Notify(ctx context.Context, ev notify.Event) error {
	_, _, err := n.client.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionText(ev.Summary(), false))
	if err != nil {
		return fmt.Errorf("slack: post to %s: %w", n.channelID, err)
	}
	return nil
}
