package channel

import "fmt"

// ConfigurationError reports an agent whose registered coordinates failed
// validation, making GUI delivery impossible.
type ConfigurationError struct {
	AgentID string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("channel: invalid coordinates for agent %s: %s", e.AgentID, e.Reason)
}

// DeliveryError reports a failure during a delivery attempt.
type DeliveryError struct {
	MessageID string
	Channel   Kind
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("channel: %s delivery of message %s failed: %v", e.Channel, e.MessageID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
