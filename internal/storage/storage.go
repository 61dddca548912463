// Package storage persists the hunting journal.
package storage

import "github.com/OCAP2/hunter/pkg/core"

// Backend is the interface all journal implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// RecordTrapEvent stores e and assigns its ID.
	RecordTrapEvent(e *core.TrapEvent) error

	// Summary counts everything recorded so far.
	Summary() (core.EventSummary, error)
}

// Exportable is an optional interface for backends that write the journal
// to a file on Close.
type Exportable interface {
	ExportPath() string
}
