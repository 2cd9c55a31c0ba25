//go:build unittest

package channel

import "time"

// XDoTool is a no-op stub used during unit testing (build tag: unittest).
// The real implementation is in automator_real.go.
type XDoTool struct{}

func (XDoTool) MoveMouse(x, y int) error                        { return nil }
func (XDoTool) Click() error                                    { return nil }
func (XDoTool) TypeText(text string, delay time.Duration) error { return nil }
func (XDoTool) PressKeys(combo string) error                    { return nil }
