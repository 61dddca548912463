// Package sim is an in-memory world that stands in for the game client. It
// implements every hunting collaborator, so whole cycles can run without one.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/OCAP2/hunter/internal/geo"
	"github.com/OCAP2/hunter/internal/hunting"
	"github.com/OCAP2/hunter/pkg/core"
)

// Config drives a World.
type Config struct {
	Seed     int64
	Start    core.Coordinate
	TrapItem string
	Supplies int
	// RestockAmount is how many items a successful Restock adds.
	RestockAmount int

	// chances are rolled once per trap or tile on every Tick
	TriggerChance float64
	VanishChance  float64
	ForeignChance float64
	// MoveFailChance is rolled on every move.
	MoveFailChance float64
	// StepTime is the walking time per tile; zero moves instantly.
	StepTime time.Duration

	// Zones foreign occupants appear in.
	Zones geo.Zones
}

// Stats counts what happened in the world.
type Stats struct {
	Ticks       int
	Placed      int
	Triggered   int
	Caught      int
	Vanished    int
	Moves       int
	FailedMoves int
}

type trap struct {
	triggered bool
}

// World is safe for concurrent use.
type World struct {
	mu  sync.Mutex
	cfg Config
	rng *rand.Rand

	player   core.Coordinate
	known    bool
	items    map[string]int
	traps    map[core.Coordinate]*trap
	foreign  map[core.Coordinate]bool
	stats    Stats
	restocks int
}

var (
	_ hunting.Inventory  = (*World)(nil)
	_ hunting.Locator    = (*World)(nil)
	_ hunting.Mover      = (*World)(nil)
	_ hunting.Interactor = (*World)(nil)
	_ hunting.Restocker  = (*World)(nil)
)

// New builds a world with the player standing on cfg.Start.
func New(cfg Config) *World {
	w := &World{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		player:  cfg.Start,
		known:   true,
		items:   make(map[string]int),
		traps:   make(map[core.Coordinate]*trap),
		foreign: make(map[core.Coordinate]bool),
	}
	if cfg.TrapItem != "" {
		w.items[cfg.TrapItem] = cfg.Supplies
	}
	return w
}

// Count implements hunting.Inventory. Unknown items do not resolve.
func (w *World) Count(item string) (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.items[item]
	return n, ok
}

// Position implements hunting.Locator.
func (w *World) Position() (core.Coordinate, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.player, w.known
}

// SetPosition teleports the player. known=false hides the position.
func (w *World) SetPosition(c core.Coordinate, known bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player, w.known = c, known
}

// MoveTo implements hunting.Mover. Walking takes StepTime per tile and gives
// up when ctx ends. Another plane is unreachable.
func (w *World) MoveTo(ctx context.Context, target core.Coordinate, cfg hunting.MovementConfig) bool {
	w.mu.Lock()
	w.stats.Moves++
	dist := w.player.Chebyshev(target)
	fail := dist < 0 || w.roll(w.cfg.MoveFailChance)
	if fail {
		w.stats.FailedMoves++
	}
	w.mu.Unlock()

	if fail {
		return false
	}
	if dist <= cfg.Tolerance {
		return true
	}

	if walk := time.Duration(dist) * w.cfg.StepTime; walk > 0 {
		timer := time.NewTimer(walk)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.stats.FailedMoves++
			w.mu.Unlock()
			return false
		case <-timer.C:
		}
	} else if ctx.Err() != nil {
		return false
	}

	w.mu.Lock()
	w.player = target
	w.mu.Unlock()
	return true
}

// Interact implements hunting.Interactor.
func (w *World) Interact(ctx context.Context, target core.Coordinate, action hunting.Action) hunting.Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, ok := w.traps[target]
	switch action {
	case hunting.ActionPlace:
		if ok || w.foreign[target] {
			return hunting.OutcomeOccupiedByOther
		}
		if w.items[w.cfg.TrapItem] <= 0 {
			return hunting.OutcomeMissing
		}
		w.items[w.cfg.TrapItem]--
		w.traps[target] = &trap{}
		w.stats.Placed++
		return hunting.OutcomeSucceeded

	case hunting.ActionCollect:
		if !ok {
			return hunting.OutcomeMissing
		}
		delete(w.traps, target)
		w.items[w.cfg.TrapItem]++
		if t.triggered {
			w.stats.Caught++
		}
		return hunting.OutcomeSucceeded

	default:
		if !ok {
			return hunting.OutcomeMissing
		}
		if t.triggered {
			return hunting.OutcomeTriggered
		}
		return hunting.OutcomeSucceeded
	}
}

// Restock implements hunting.Restocker.
func (w *World) Restock(ctx context.Context, item string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cfg.RestockAmount <= 0 {
		return false
	}
	w.items[item] += w.cfg.RestockAmount
	w.restocks++
	return true
}

// Tick advances the world once: idle traps may catch something or collapse,
// and a foreign occupant may take a free tile.
func (w *World) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Ticks++

	for _, c := range core.NewTrapSet(w.trapCoordinates()...).Slice() {
		t := w.traps[c]
		if t.triggered {
			continue
		}
		switch {
		case w.roll(w.cfg.TriggerChance):
			t.triggered = true
			w.stats.Triggered++
		case w.roll(w.cfg.VanishChance):
			delete(w.traps, c)
			w.stats.Vanished++
		}
	}

	if w.roll(w.cfg.ForeignChance) {
		clear(w.foreign)
		if c, ok := w.cfg.Zones.RandomPosition(w.rng); ok {
			if _, taken := w.traps[c]; !taken {
				w.foreign[c] = true
			}
		}
	}
}

// Trigger springs the trap on c.
func (w *World) Trigger(c core.Coordinate) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.traps[c]
	if ok && !t.triggered {
		t.triggered = true
		w.stats.Triggered++
	}
	return ok
}

// Vanish removes the trap on c without telling anyone.
func (w *World) Vanish(c core.Coordinate) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.traps[c]; !ok {
		return false
	}
	delete(w.traps, c)
	w.stats.Vanished++
	return true
}

// Occupy puts a foreign occupant on c. Free clears it.
func (w *World) Occupy(c core.Coordinate) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.foreign[c] = true
}

// Free clears a foreign occupant.
func (w *World) Free(c core.Coordinate) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.foreign, c)
}

// SetItems overrides an inventory count.
func (w *World) SetItems(item string, n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items[item] = n
}

// Traps returns the tiles holding a trap of ours.
func (w *World) Traps() core.TrapSet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return core.NewTrapSet(w.trapCoordinates()...)
}

// Stats returns a copy of the counters.
func (w *World) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Restocks returns how many restocks succeeded.
func (w *World) Restocks() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.restocks
}

func (w *World) trapCoordinates() []core.Coordinate {
	out := make([]core.Coordinate, 0, len(w.traps))
	for c := range w.traps {
		out = append(out, c)
	}
	return out
}

// roll is true with probability p. Callers hold the lock.
func (w *World) roll(p float64) bool {
	if p <= 0 {
		return false
	}
	return w.rng.Float64() < p
}
