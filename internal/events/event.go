// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"opsdesk_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Task Domain Events
// =============================================================================

// TaskCreated is published when a task is persisted to the store, whether
// by an operator command, an agent executor, or the interpreter.
type TaskCreated struct {
	BaseEvent
	TaskID      string `json:"taskId"`
	PropertyID  string `json:"propertyId"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	StaffName   string `json:"staffName,omitempty"`
	Source      string `json:"source"` // "directive", "agent", "interpreter"
}

func (e TaskCreated) EventName() string { return "tasks.created" }

// TaskStatusChanged is published after a status patch is confirmed by the
// store, so sibling views can force an immediate out-of-cycle poll.
type TaskStatusChanged struct {
	BaseEvent
	TaskID    string `json:"taskId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	View      string `json:"view,omitempty"`
}

func (e TaskStatusChanged) EventName() string { return "tasks.status_changed" }

// =============================================================================
// View Domain Events
// =============================================================================

// RefreshRequested asks every observer view to poll the store immediately
// instead of waiting a full interval.
type RefreshRequested struct {
	BaseEvent
	Reason string `json:"reason"`
}

func (e RefreshRequested) EventName() string { return "views.refresh" }
