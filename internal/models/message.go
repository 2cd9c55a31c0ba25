// Package models defines the shared domain types for Switchboard.
package models

import (
	"fmt"
	"time"
)

// MessageType classifies the intent of a message.
type MessageType string

const (
	TypeText         MessageType = "TEXT"
	TypeCommand      MessageType = "COMMAND"
	TypeStatus       MessageType = "STATUS"
	TypeCoordination MessageType = "COORDINATION"
	TypeOnboarding   MessageType = "ONBOARDING"
)

// ParseMessageType validates and returns a MessageType from its string form.
func ParseMessageType(s string) (MessageType, error) {
	switch MessageType(s) {
	case TypeText, TypeCommand, TypeStatus, TypeCoordination, TypeOnboarding:
		return MessageType(s), nil
	}
	return "", fmt.Errorf("models: unknown message type %q", s)
}

// Priority orders messages in the dispatch queue. Higher values drain first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

// String returns the canonical name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityNormal:
		return "NORMAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityUrgent:
		return "URGENT"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority validates and returns a Priority from its string form
// (case-sensitive, canonical names).
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "LOW":
		return PriorityLow, nil
	case "NORMAL":
		return PriorityNormal, nil
	case "HIGH":
		return PriorityHigh, nil
	case "URGENT":
		return PriorityUrgent, nil
	}
	return 0, fmt.Errorf("models: unknown priority %q", s)
}

// Status is the delivery lifecycle state of a message. Transitions are
// one-way: PENDING to SENT or PENDING to FAILED, never back.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// BroadcastRecipient addresses a message to every registered agent.
const BroadcastRecipient = "ALL"

// Message is a single unit of agent-to-agent communication flowing through
// the dispatch queue. Queue entries always carry a concrete recipient;
// broadcast fan-out happens before enqueue.
type Message struct {
	ID        string
	Sender    string
	Recipient string
	Content   string
	Type      MessageType
	Priority  Priority
	Status    Status
	CreatedAt time.Time
	Metadata  map[string]string
}

// MetaChannel is the metadata key that forces channel selection.
// Accepted values are "gui" and "file".
const MetaChannel = "channel"
