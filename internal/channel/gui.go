package channel

import (
	"strings"
	"sync"
	"time"

	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/registry"
)

// Key combos sent to the target UI. The soft newline keeps multi-line
// content from submitting early; the urgent submit lets a receiving UI
// distinguish urgency if it supports Alt+Enter.
const (
	keySelectAll    = "ctrl+a"
	keyDelete       = "Delete"
	keySoftNewline  = "shift+Return"
	keySubmit       = "Return"
	keyUrgentSubmit = "alt+Return"
)

// Default typing pacing. Slow target UIs drop keystrokes without an
// inter-character delay.
const (
	DefaultSettleDelay = 300 * time.Millisecond
	DefaultKeyDelay    = 12 * time.Millisecond
)

// guiMu serializes GUI deliveries across every channel instance in the
// process. The pointer and keyboard focus are a single shared resource:
// interleaved keystrokes from two workers would corrupt both deliveries.
var guiMu sync.Mutex

// GUIOpts holds optional pacing parameters for the GUI channel.
type GUIOpts struct {
	SettleDelay time.Duration // wait after click before typing
	KeyDelay    time.Duration // inter-character typing delay
}

// GUIInjectionChannel delivers a message by clicking into the recipient's
// registered input coordinate and typing the content.
type GUIInjectionChannel struct {
	reg         *registry.Registry
	auto        Automator
	settleDelay time.Duration
	keyDelay    time.Duration
}

// NewGUIInjectionChannel builds a GUI channel over reg. auto may be nil, in
// which case DefaultAutomator is used.
func NewGUIInjectionChannel(reg *registry.Registry, auto Automator, opts GUIOpts) *GUIInjectionChannel {
	if auto == nil {
		auto = DefaultAutomator
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.KeyDelay <= 0 {
		opts.KeyDelay = DefaultKeyDelay
	}
	return &GUIInjectionChannel{
		reg:         reg,
		auto:        auto,
		settleDelay: opts.SettleDelay,
		keyDelay:    opts.KeyDelay,
	}
}

func (c *GUIInjectionChannel) Kind() Kind { return KindGUI }

// Deliver types msg.Content into the recipient's input box. No retries are
// performed here; retry policy belongs to the coordinator.
func (c *GUIInjectionChannel) Deliver(msg *models.Message) (bool, error) {
	x, y, ok := c.reg.Get(msg.Recipient)
	if !ok {
		_, reason := c.reg.Validate(msg.Recipient)
		return false, &ConfigurationError{AgentID: msg.Recipient, Reason: reason}
	}

	guiMu.Lock()
	defer guiMu.Unlock()

	if err := c.inject(msg, x, y); err != nil {
		return false, &DeliveryError{MessageID: msg.ID, Channel: KindGUI, Err: err}
	}
	return true, nil
}

func (c *GUIInjectionChannel) inject(msg *models.Message, x, y int) error {
	// Acquire focus.
	if err := c.auto.MoveMouse(x, y); err != nil {
		return err
	}
	if err := c.auto.Click(); err != nil {
		return err
	}
	time.Sleep(c.settleDelay)

	// Clear any residual content in the target input.
	if err := c.auto.PressKeys(keySelectAll); err != nil {
		return err
	}
	if err := c.auto.PressKeys(keyDelete); err != nil {
		return err
	}

	// Type line by line, soft newline between lines.
	lines := strings.Split(msg.Content, "\n")
	for i, line := range lines {
		if err := c.auto.TypeText(line, c.keyDelay); err != nil {
			return err
		}
		if i < len(lines)-1 {
			if err := c.auto.PressKeys(keySoftNewline); err != nil {
				return err
			}
		}
	}

	submit := keySubmit
	if msg.Priority == models.PriorityUrgent {
		submit = keyUrgentSubmit
	}
	return c.auto.PressKeys(submit)
}
