package channel

import "time"

// Automator abstracts GUI input synthesis for testability.
type Automator interface {
	MoveMouse(x, y int) error
	Click() error
	TypeText(text string, delay time.Duration) error
	PressKeys(combo string) error
}

// DefaultAutomator is the default input synthesizer used by the package.
// Set to XDoTool{} in automator_real.go (excluded from test builds via
// build tag).
var DefaultAutomator Automator = XDoTool{}
