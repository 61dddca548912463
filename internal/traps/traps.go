package traps

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/OCAP2/hunter/pkg/core"
)

var (
	// ErrAlreadyTracked is returned when registering a coordinate that is still tracked
	ErrAlreadyTracked = errors.New("coordinate already tracked")
	// ErrNotTracked is returned when transitioning a coordinate the ledger does not hold
	ErrNotTracked = errors.New("coordinate not tracked")
	// ErrCapacity is returned when registering would exceed the ledger capacity
	ErrCapacity = errors.New("trap capacity reached")
)

// State is the lifecycle state of a tracked tile. Absence from the ledger is Empty.
type State int

const (
	Empty State = iota
	Placed
	Occupied
)

func (s State) String() string {
	switch s {
	case Placed:
		return "placed"
	case Occupied:
		return "occupied"
	default:
		return "empty"
	}
}

// Record is the ledger entry for one tile.
type Record struct {
	Coordinate    core.Coordinate
	State         State
	PlacedAt      time.Time
	LastCheckedAt time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager is the ledger of traps for one trap type. It only records what the
// owning task tells it; it never decides placement.
type Manager struct {
	mu       sync.Mutex
	trapType string
	capacity int
	records  map[core.Coordinate]*Record
	now      func() time.Time
}

// NewManager creates an empty ledger. A capacity <= 0 means unbounded.
func NewManager(trapType string, capacity int, opts ...Option) *Manager {
	m := &Manager{
		trapType: trapType,
		capacity: capacity,
		records:  make(map[core.Coordinate]*Record),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TrapType returns the trap type this ledger tracks.
func (m *Manager) TrapType() string { return m.trapType }

// Capacity returns the maximum number of tracked traps.
func (m *Manager) Capacity() int { return m.capacity }

// Register records a freshly placed trap.
func (m *Manager) Register(c core.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[c]; ok {
		return ErrAlreadyTracked
	}
	if m.capacity > 0 && len(m.records) >= m.capacity {
		return ErrCapacity
	}
	now := m.now()
	m.records[c] = &Record{
		Coordinate:    c,
		State:         Placed,
		PlacedAt:      now,
		LastCheckedAt: now,
	}
	return nil
}

// MarkOccupied moves a Placed trap to Occupied. Marking an Occupied trap again
// is a no-op.
func (m *Manager) MarkOccupied(c core.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[c]
	if !ok {
		return ErrNotTracked
	}
	if r.State == Occupied {
		return nil
	}
	r.State = Occupied
	r.LastCheckedAt = m.now()
	return nil
}

// MarkChecked stamps c as inspected now without changing its state.
func (m *Manager) MarkChecked(c core.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[c]
	if !ok {
		return ErrNotTracked
	}
	r.LastCheckedAt = m.now()
	return nil
}

// Remove forgets a trap after collection or when it vanished. It reports
// whether the coordinate was tracked.
func (m *Manager) Remove(c core.Coordinate) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[c]; !ok {
		return false
	}
	delete(m.records, c)
	return true
}

// ClearAllTraps empties the ledger.
func (m *Manager) ClearAllTraps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[core.Coordinate]*Record)
}

// Record returns a copy of the record for c.
func (m *Manager) Record(c core.Coordinate) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[c]; ok {
		return *r, true
	}
	return Record{}, false
}

// State returns the state of c; untracked tiles are Empty.
func (m *Manager) State(c core.Coordinate) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[c]; ok {
		return r.State
	}
	return Empty
}

// Len returns the number of tracked traps.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Snapshot returns every Placed or Occupied coordinate.
func (m *Manager) Snapshot() core.TrapSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	coords := make([]core.Coordinate, 0, len(m.records))
	for c := range m.records {
		coords = append(coords, c)
	}
	return core.NewTrapSet(coords...)
}

// Placed returns the Placed records ordered by coordinate.
func (m *Manager) Placed() []Record {
	return m.inState(Placed)
}

// Occupied returns the Occupied records ordered by coordinate.
func (m *Manager) Occupied() []Record {
	return m.inState(Occupied)
}

// Stale returns Placed records not checked since olderThan, oldest first.
func (m *Manager) Stale(olderThan time.Time) []Record {
	out := make([]Record, 0)
	for _, r := range m.Placed() {
		if r.LastCheckedAt.Before(olderThan) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		return a.LastCheckedAt.Compare(b.LastCheckedAt)
	})
	return out
}

func (m *Manager) inState(s State) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		if r.State == s {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b Record) int {
		return core.Compare(a.Coordinate, b.Coordinate)
	})
	return out
}
