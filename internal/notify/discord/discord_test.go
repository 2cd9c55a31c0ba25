package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/zulandar/switchboard/internal/notify"
)

type mockSession struct {
	channelID string
	content   string
	err       error
}

func (m *mockSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channelID = channelID
	m.content = content
	return &discordgo.Message{}, m.err
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("", "chan"); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := New("token", ""); err == nil {
		t.Error("expected error for missing channel")
	}
	if _, err := New("token", "chan"); err != nil {
		t.Errorf("New = %v", err)
	}
}

func TestNotify_SendsSummary(t *testing.T) {
	sess := &mockSession{}
	n := &Notifier{sess: sess, channelID: "C123"}

	ev := notify.Event{
		MessageID: "m1",
		AgentID:   "Agent-4",
		Channel:   "gui",
		Reason:    "boom",
		Severity:  notify.SeverityError,
	}
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if sess.channelID != "C123" {
		t.Errorf("channelID = %q", sess.channelID)
	}
	if sess.content != ev.Summary() {
		t.Errorf("content = %q, want %q", sess.content, ev.Summary())
	}
}

func TestNotify_WrapsError(t *testing.T) {
	sess := &mockSession{err: errors.New("rate limited")}
	n := &Notifier{sess: sess, channelID: "C123"}

	if err := n.Notify(context.Background(), notify.Event{AgentID: "a"}); err == nil {
		t.Error("expected error")
	}
}
