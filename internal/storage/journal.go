package storage

import (
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/OCAP2/hunter/internal/queue"
	"github.com/OCAP2/hunter/pkg/core"
)

// DefaultJournalLimit bounds the events held while the backend keeps failing.
const DefaultJournalLimit = 10000

// Journal buffers trap events and writes them to a Backend on Flush.
// Events that fail to write stay buffered for the next flush.
type Journal struct {
	backend Backend
	pending *queue.Queue[core.TrapEvent]
	log     *slog.Logger
}

// NewJournal wraps backend. A nil logger uses slog.Default.
func NewJournal(backend Backend, log *slog.Logger) *Journal {
	if log == nil {
		log = slog.Default()
	}
	return &Journal{
		backend: backend,
		pending: queue.NewBounded[core.TrapEvent](DefaultJournalLimit),
		log:     log,
	}
}

// Record buffers e until the next Flush.
func (j *Journal) Record(e core.TrapEvent) {
	j.pending.Push(e)
}

// Pending returns the number of buffered events.
func (j *Journal) Pending() int {
	return j.pending.Len()
}

// Flush writes every buffered event in order. On the first failure the
// remaining events are requeued.
func (j *Journal) Flush() error {
	events := j.pending.Drain()
	for i := range events {
		if err := j.backend.RecordTrapEvent(&events[i]); err != nil {
			j.pending.Requeue(events[i:]...)
			if dropped := j.pending.Dropped(); dropped > 0 {
				j.log.Warn("Journal buffer full, dropped oldest events", "dropped", dropped)
			}
			return fmt.Errorf("failed to record %s event: %w", events[i].Kind, err)
		}
	}
	if len(events) > 0 {
		j.log.Debug("Journal flushed", "events", len(events))
	}
	return nil
}

// Summary delegates to the backend.
func (j *Journal) Summary() (core.EventSummary, error) {
	return j.backend.Summary()
}

// Close flushes what is left and closes the backend.
func (j *Journal) Close() error {
	return multierr.Combine(j.Flush(), j.backend.Close())
}
