// pkg/core/events.go
package core

import "time"

// EventKind identifies what happened to a trap or to the task servicing it.
type EventKind string

const (
	EventPlaced    EventKind = "placed"
	EventTriggered EventKind = "triggered"
	EventCollected EventKind = "collected"
	EventMissing   EventKind = "missing"
	EventBlocked   EventKind = "blocked"
	EventDepleted  EventKind = "depleted"
	EventRestocked EventKind = "restocked"
	EventReset     EventKind = "reset"
)

// TrapEvent is one entry of the hunting journal
type TrapEvent struct {
	ID         uint
	Time       time.Time
	Task       string
	TrapType   string
	Kind       EventKind
	Coordinate Coordinate
	Strategy   string
	Details    map[string]any
}

// EventSummary counts journal entries per kind
type EventSummary struct {
	Total  int
	ByKind map[EventKind]int
}
