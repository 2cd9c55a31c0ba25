// Package discord implements the notify.Notifier interface over the
// Discord REST API.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/zulandar/switchboard/internal/notify"
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts escalation events to a single Discord channel. Messages go
// over REST; no gateway connection is opened.
type Notifier struct {
	sess      session
	channelID string
}

// New builds a Notifier from a bot token and target channel ID.
func New(botToken, channelID string) (*Notifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord: channel ID is required")
	}
	sess, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &Notifier{sess: sess, channelID: channelID}, nil
}

// Notify posts the event summary to the configured channel.
func (n *Notifier) Notify(ctx context.Context, ev notify.Event) error {
	_, err := n.sess.ChannelMessageSend(n.channelID, ev.Summary(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: send to %s: %w", n.channelID, err)
	}
	return nil
}
