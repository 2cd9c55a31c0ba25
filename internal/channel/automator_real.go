//go:build !unittest

package channel

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// XDoTool is the production Automator that calls the real xdotool binary.
type XDoTool struct{}

func (XDoTool) MoveMouse(x, y int) error {
	cmd := exec.Command("xdotool", "mousemove", strconv.Itoa(x), strconv.Itoa(y))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mousemove to (%d, %d): %s: %w", x, y, strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (XDoTool) Click() error {
	cmd := exec.Command("xdotool", "click", "1")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("click: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (XDoTool) TypeText(text string, delay time.Duration) error {
	ms := strconv.FormatInt(delay.Milliseconds(), 10)
	cmd := exec.Command("xdotool", "type", "--delay", ms, "--", text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("type text: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (XDoTool) PressKeys(combo string) error {
	cmd := exec.Command("xdotool", "key", "--clearmodifiers", combo)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("press %q: %s: %w", combo, strings.TrimSpace(string(out)), err)
	}
	return nil
}
