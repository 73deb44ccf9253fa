// Package realtime fans dashboard update events out to in-process subscribers
// and websocket clients.
package realtime

import (
	"maps"
	"time"
)

// Kind is the domain area an update touches.
type Kind string

const (
	KindAsset  Kind = "asset"
	KindTask   Kind = "task"
	KindMetric Kind = "metric"
)

// Action is what happened to the affected record.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kinds lists every Kind in a stable order.
var Kinds = []Kind{KindAsset, KindTask, KindMetric}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindAsset || k == KindTask || k == KindMetric
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// UpdateEvent describes one change. Events are values: each subscriber gets
// its own copy of the payload.
type UpdateEvent struct {
	Kind       Kind           `json:"type" yaml:"type"`
	Action     Action         `json:"action" yaml:"action"`
	Payload    map[string]any `json:"data" yaml:"data"`
	OccurredAt time.Time      `json:"timestamp" yaml:"timestamp"`
}

// NewUpdateEvent builds an event, copying payload.
func NewUpdateEvent(kind Kind, action Action, payload map[string]any, occurredAt time.Time) UpdateEvent {
	return UpdateEvent{
		Kind:       kind,
		Action:     action,
		Payload:    maps.Clone(payload),
		OccurredAt: occurredAt,
	}
}

// Clone returns a copy whose top-level payload map is independent of e's.
func (e UpdateEvent) Clone() UpdateEvent {
	e.Payload = maps.Clone(e.Payload)
	return e
}
