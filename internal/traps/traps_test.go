package traps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/hunter/pkg/core"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestManager(capacity int) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewManager("box trap", capacity, WithClock(clock.now)), clock
}

func TestRegister_AppearsOnce(t *testing.T) {
	m, _ := newTestManager(3)
	c := core.NewCoordinate(10, 20, 0)

	require.NoError(t, m.Register(c))
	snap := m.Snapshot()
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, []core.Coordinate{c}, snap.Slice())
	assert.Equal(t, Placed, m.State(c))

	assert.ErrorIs(t, m.Register(c), ErrAlreadyTracked)
	assert.Equal(t, 1, m.Snapshot().Len())
}

func TestRegister_Capacity(t *testing.T) {
	m, _ := newTestManager(2)
	require.NoError(t, m.Register(core.NewCoordinate(1, 1, 0)))
	require.NoError(t, m.Register(core.NewCoordinate(2, 1, 0)))
	assert.ErrorIs(t, m.Register(core.NewCoordinate(3, 1, 0)), ErrCapacity)
	assert.Equal(t, 2, m.Len())

	unbounded := NewManager("box trap", 0)
	for i := 0; i < 10; i++ {
		require.NoError(t, unbounded.Register(core.NewCoordinate(i, 0, 0)))
	}
}

func TestRemove_ReturnsToEmpty(t *testing.T) {
	m, _ := newTestManager(3)
	c := core.NewCoordinate(5, 5, 0)
	require.NoError(t, m.Register(c))

	assert.True(t, m.Remove(c))
	assert.False(t, m.Snapshot().Contains(c))
	assert.Equal(t, Empty, m.State(c))
	assert.False(t, m.Remove(c), "second removal reports untracked")

	require.NoError(t, m.Register(c), "a removed tile can be placed again")
}

func TestMarkOccupied(t *testing.T) {
	m, clock := newTestManager(3)
	c := core.NewCoordinate(5, 5, 0)

	assert.ErrorIs(t, m.MarkOccupied(c), ErrNotTracked)

	require.NoError(t, m.Register(c))
	clock.t = clock.t.Add(time.Minute)
	require.NoError(t, m.MarkOccupied(c))
	require.NoError(t, m.MarkOccupied(c))

	r, ok := m.Record(c)
	require.True(t, ok)
	assert.Equal(t, Occupied, r.State)
	assert.Equal(t, time.Minute, r.LastCheckedAt.Sub(r.PlacedAt))
	assert.True(t, m.Snapshot().Contains(c), "occupied traps stay in the snapshot")
	assert.Len(t, m.Occupied(), 1)
	assert.Empty(t, m.Placed())
}

func TestMarkChecked(t *testing.T) {
	m, clock := newTestManager(3)
	c := core.NewCoordinate(5, 5, 0)

	assert.ErrorIs(t, m.MarkChecked(c), ErrNotTracked)

	require.NoError(t, m.Register(c))
	clock.t = clock.t.Add(time.Hour)
	require.Len(t, m.Stale(clock.t.Add(-time.Minute)), 1)

	require.NoError(t, m.MarkChecked(c))
	r, ok := m.Record(c)
	require.True(t, ok)
	assert.Equal(t, Placed, r.State)
	assert.Equal(t, clock.t, r.LastCheckedAt)
	assert.Equal(t, time.Hour, r.LastCheckedAt.Sub(r.PlacedAt))
	assert.Empty(t, m.Stale(clock.t.Add(-time.Minute)), "a fresh check drops the trap from Stale")
	assert.Equal(t, 1, m.Len())
}

func TestClearAllTraps(t *testing.T) {
	m, _ := newTestManager(5)
	for i := 0; i < 4; i++ {
		require.NoError(t, m.Register(core.NewCoordinate(i, i, 0)))
	}
	require.NoError(t, m.MarkOccupied(core.NewCoordinate(1, 1, 0)))

	m.ClearAllTraps()
	assert.Equal(t, 0, m.Snapshot().Len())
	assert.Equal(t, 0, m.Len())
}

func TestStale_OldestFirst(t *testing.T) {
	m, clock := newTestManager(5)
	start := clock.t

	a := core.NewCoordinate(9, 9, 0)
	b := core.NewCoordinate(1, 1, 0)
	fresh := core.NewCoordinate(4, 4, 0)

	require.NoError(t, m.Register(a))
	clock.t = start.Add(time.Second)
	require.NoError(t, m.Register(b))
	clock.t = start.Add(time.Hour)
	require.NoError(t, m.Register(fresh))

	stale := m.Stale(start.Add(time.Minute))
	require.Len(t, stale, 2)
	assert.Equal(t, a, stale[0].Coordinate)
	assert.Equal(t, b, stale[1].Coordinate)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "placed", Placed.String())
	assert.Equal(t, "occupied", Occupied.String())
}
