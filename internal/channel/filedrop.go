package channel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zulandar/switchboard/internal/models"
)

const (
	envelopeRule   = "----------------------------------------"
	envelopeFooter = "[END MESSAGE]"
	inboxDirName   = "inbox"
	messageExt     = ".msg"
)

// FileDropChannel delivers a message by writing an envelope file into the
// recipient's inbox directory. It is the designated fallback when GUI
// injection is unavailable and the primary for short coordination pings.
type FileDropChannel struct {
	root string
	now  func() time.Time
}

// NewFileDropChannel builds a file channel rooted at the per-agent inbox
// directory tree.
func NewFileDropChannel(root string) *FileDropChannel {
	return &FileDropChannel{root: root, now: time.Now}
}

func (c *FileDropChannel) Kind() Kind { return KindFile }

// InboxDir returns the inbox directory for an agent.
func (c *FileDropChannel) InboxDir(agentID string) string {
	return filepath.Join(c.root, agentID, inboxDirName)
}

// Deliver writes the envelope atomically: a temp file in the target
// directory is renamed into place, so a consumer never observes a partial
// write.
func (c *FileDropChannel) Deliver(msg *models.Message) (bool, error) {
	dir := c.InboxDir(msg.Recipient)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, &DeliveryError{MessageID: msg.ID, Channel: KindFile,
			Err: fmt.Errorf("create inbox %s: %w", dir, err)}
	}

	name := c.filename(msg)
	tmp := filepath.Join(dir, name+".tmp")
	final := filepath.Join(dir, name)

	if err := os.WriteFile(tmp, []byte(Envelope(msg)), 0o644); err != nil {
		return false, &DeliveryError{MessageID: msg.ID, Channel: KindFile,
			Err: fmt.Errorf("write %s: %w", tmp, err)}
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return false, &DeliveryError{MessageID: msg.ID, Channel: KindFile,
			Err: fmt.Errorf("rename %s: %w", final, err)}
	}
	return true, nil
}

// filename builds a collision-resistant name: <source>_<timestamp>.msg with
// microsecond precision.
func (c *FileDropChannel) filename(msg *models.Message) string {
	now := c.now().UTC()
	return fmt.Sprintf("%s_%s_%06d%s",
		sanitizeSource(msg.Sender),
		now.Format("20060102_150405"),
		now.Nanosecond()/1000,
		messageExt)
}

// sanitizeSource lowercases the sender and strips anything unsafe for a
// filename.
func sanitizeSource(sender string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(sender) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

// Envelope renders the fixed plain-text message envelope: a header block,
// the body, and a protocol footer.
func Envelope(msg *models.Message) string {
	tags := msg.Metadata["tags"]
	if tags == "" {
		tags = strings.ToLower(string(msg.Type))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[MESSAGE] %s\n", msg.Type)
	fmt.Fprintf(&b, "From: %s\n", msg.Sender)
	fmt.Fprintf(&b, "To: %s\n", msg.Recipient)
	fmt.Fprintf(&b, "Priority: %s\n", msg.Priority)
	fmt.Fprintf(&b, "Tags: %s\n", tags)
	b.WriteString(envelopeRule + "\n")
	b.WriteString(msg.Content)
	if !strings.HasSuffix(msg.Content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(envelopeRule + "\n")
	b.WriteString(envelopeFooter + "\n")
	return b.String()
}
