package domain

import (
	"context"
	"time"
)

// LifecycleEventType defines the category of a lifecycle event.
type LifecycleEventType string

const (
	LifecycleNodeEnter  LifecycleEventType = "node_enter"
	LifecycleNodeLeave  LifecycleEventType = "node_leave"
	LifecycleAnswer     LifecycleEventType = "answer"
	LifecycleCompletion LifecycleEventType = "completion"
	LifecycleRejected   LifecycleEventType = "rejected"
)

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time          `json:"timestamp"`
	Type      LifecycleEventType `json:"type"`
	SectionID string             `json:"section_id"`
}

// NodeEvent represents entry into or exit from a node.
type NodeEvent struct {
	EventBase
	NodeKey  string    `json:"node_key"`
	NodeKind NodeKind  `json:"node_kind"`
	State    NodeState `json:"state"`
}

// AnswerEvent represents a submitted answer.
type AnswerEvent struct {
	EventBase
	CaseID    string `json:"case_id"`
	Overwrite bool   `json:"overwrite"`
}

// CompletionEvent represents a flip of the section completion flag.
type CompletionEvent struct {
	EventBase
	Completed bool `json:"completed"`
	Answered  int  `json:"answered"`
	Total     int  `json:"total"`
}

// RejectedEvent represents an event dropped because its precondition failed.
type RejectedEvent struct {
	EventBase
	Event   EventType `json:"event"`
	NodeKey string    `json:"node_key"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter          func(context.Context, *NodeEvent)
	OnNodeLeave          func(context.Context, *NodeEvent)
	OnAnswer             func(context.Context, *AnswerEvent)
	OnCompletion         func(context.Context, *CompletionEvent)
	OnTransitionRejected func(context.Context, *RejectedEvent)
}
