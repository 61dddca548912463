// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/OCAP2/hunter/internal/config"
	"github.com/OCAP2/hunter/pkg/core"
)

// Backend keeps the journal in memory and exports it to JSON on Close
// when an output directory is configured.
type Backend struct {
	cfg    config.MemoryConfig
	events []core.TrapEvent
	byKind map[core.EventKind]int

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:    cfg,
		byKind: make(map[core.EventKind]int),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports the journal if configured
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.OutputDir == "" || len(b.events) == 0 {
		return nil
	}
	return b.exportJSON()
}

// RecordTrapEvent stores a copy of e and assigns its ID
func (b *Backend) RecordTrapEvent(e *core.TrapEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	e.ID = b.idCounter
	b.events = append(b.events, *e)
	b.byKind[e.Kind]++
	return nil
}

// Summary counts the recorded events
func (b *Backend) Summary() (core.EventSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	byKind := make(map[core.EventKind]int, len(b.byKind))
	for k, n := range b.byKind {
		byKind[k] = n
	}
	return core.EventSummary{Total: len(b.events), ByKind: byKind}, nil
}

// Events returns a copy of the recorded events in order
func (b *Backend) Events() []core.TrapEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.TrapEvent, len(b.events))
	copy(out, b.events)
	return out
}

// ExportPath returns the file written by the last Close
func (b *Backend) ExportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
