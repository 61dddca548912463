package hunting

import (
	"context"
	"errors"
	"time"

	"github.com/OCAP2/hunter/internal/traps"
	"github.com/OCAP2/hunter/pkg/core"
)

// Execute runs one cycle: supply check, placement while below capacity,
// otherwise maintenance of the traps already out. Every failure ends the
// cycle early and leaves the retry to the next poll.
func (t *Task) Execute(ctx context.Context) time.Duration {
	defer t.flush()

	player, ok := t.deps.Locator.Position()
	if !ok {
		t.log.Debug("Player position unknown, skipping cycle")
		return t.nextDelay()
	}

	hasSupplies := t.HasSupplies()
	if hasSupplies {
		t.depleted = false
	} else if t.onDepleted(ctx) {
		return t.nextDelay()
	}

	t.expireBlocked()

	if hasSupplies && t.ledger.Len() < t.cfg.MaxTraps {
		if t.place(ctx, player) {
			return t.nextDelay()
		}
	}

	if t.maintain(ctx) {
		return t.nextDelay()
	}

	t.reposition(ctx, player)
	return t.nextDelay()
}

// onDepleted applies the depletion policy and reports whether it used up the cycle.
func (t *Task) onDepleted(ctx context.Context) bool {
	if !t.depleted {
		t.depleted = true
		t.log.Warn("Out of trap supplies", "item", t.cfg.TrapItem, "policy", t.cfg.Depletion)
		t.record(core.EventDepleted, core.Coordinate{}, nil)
	}

	switch t.cfg.Depletion {
	case DepletionRestock:
		if t.deps.Restocker.Restock(ctx, t.cfg.TrapItem) {
			t.depleted = false
			t.log.Info("Restocked trap supplies", "item", t.cfg.TrapItem)
			t.record(core.EventRestocked, core.Coordinate{}, nil)
		} else {
			t.log.Warn("Restock failed", "item", t.cfg.TrapItem)
		}
		return true
	case DepletionStop:
		t.halted = true
		return true
	default:
		return false
	}
}

// place asks the strategy for a tile and tries to set a trap there. It
// reports whether the cycle was spent.
func (t *Task) place(ctx context.Context, player core.Coordinate) bool {
	candidate, ok := t.cfg.Strategy.FindNextTrapPosition(player, t.cfg.Zones, t.occupiedSnapshot())
	if !ok {
		t.log.Debug("No placement candidate this cycle")
		return false
	}

	if !t.cfg.Strategy.IsValidPosition(candidate, t.occupiedSnapshot()) {
		t.log.Debug("Candidate no longer valid", "coordinate", candidate)
		return true
	}

	if !t.move(ctx, candidate, t.cfg.Exact) {
		return true
	}

	outcome := t.deps.Interactor.Interact(ctx, candidate, ActionPlace)
	switch outcome {
	case OutcomeSucceeded, OutcomeTriggered:
		if err := t.ledger.Register(candidate); err != nil {
			t.log.Error("Failed to register placed trap", "coordinate", candidate, "error", err)
			return true
		}
		t.log.Info("Trap placed", "coordinate", candidate, "tracked", t.ledger.Len())
		t.record(core.EventPlaced, candidate, nil)
		if outcome == OutcomeTriggered {
			t.markTriggered(candidate)
		}
	case OutcomeOccupiedByOther:
		t.block(candidate)
	default:
		t.log.Warn("Trap placement failed", "coordinate", candidate, "outcome", outcome)
	}
	return true
}

// maintain collects triggered traps and drops traps that vanished. It
// reports whether the cycle was spent.
func (t *Task) maintain(ctx context.Context) bool {
	for _, r := range t.ledger.Occupied() {
		if t.isBlocked(r.Coordinate) {
			continue
		}
		return t.collect(ctx, r.Coordinate)
	}

	records := t.inspectionOrder()
	if len(records) == 0 {
		return false
	}

	var missing []core.Coordinate
	for _, r := range records {
		switch t.deps.Interactor.Interact(ctx, r.Coordinate, ActionInspect) {
		case OutcomeTriggered:
			t.markTriggered(r.Coordinate)
			return t.collect(ctx, r.Coordinate)
		case OutcomeMissing:
			missing = append(missing, r.Coordinate)
		case OutcomeSucceeded:
			if err := t.ledger.MarkChecked(r.Coordinate); err != nil {
				t.log.Error("Failed to mark trap checked", "coordinate", r.Coordinate, "error", err)
			}
		}
	}

	if len(missing) == 0 {
		return false
	}

	if tracked := t.ledger.Len(); len(missing) == tracked {
		t.log.Warn("Every tracked trap is missing, clearing ledger", "tracked", tracked)
		t.ledger.ClearAllTraps()
		t.record(core.EventReset, core.Coordinate{}, map[string]any{"tracked": tracked})
		return true
	}

	for _, c := range missing {
		t.ledger.Remove(c)
		t.log.Warn("Tracked trap missing", "coordinate", c)
		t.record(core.EventMissing, c, nil)
	}
	return true
}

func (t *Task) markTriggered(c core.Coordinate) {
	if err := t.ledger.MarkOccupied(c); err != nil {
		t.log.Error("Failed to mark trap occupied", "coordinate", c, "error", err)
		return
	}
	t.log.Info("Trap triggered", "coordinate", c)
	t.record(core.EventTriggered, c, nil)
}

func (t *Task) collect(ctx context.Context, c core.Coordinate) bool {
	if !t.move(ctx, c, t.cfg.Exact) {
		return true
	}

	switch outcome := t.deps.Interactor.Interact(ctx, c, ActionCollect); outcome {
	case OutcomeSucceeded:
		t.ledger.Remove(c)
		t.log.Info("Trap collected", "coordinate", c, "tracked", t.ledger.Len())
		t.record(core.EventCollected, c, nil)
	case OutcomeMissing:
		t.ledger.Remove(c)
		t.log.Warn("Trap gone before collection", "coordinate", c)
		t.record(core.EventMissing, c, nil)
	default:
		t.log.Warn("Trap collection failed", "coordinate", c, "outcome", outcome)
		t.holdOff(c)
	}
	return true
}

// reposition walks back to the primary zone when the player strayed outside
// every zone and nothing else needed doing.
func (t *Task) reposition(ctx context.Context, player core.Coordinate) {
	if t.cfg.Zones.Contains(player) {
		return
	}
	primary, ok := t.cfg.Zones.Primary()
	if !ok {
		return
	}
	target := primary.EdgeAnchor(player, true)
	t.log.Debug("Repositioning to zone edge", "target", target)
	t.move(ctx, target, t.cfg.Approximate)
}

func (t *Task) move(ctx context.Context, target core.Coordinate, cfg MovementConfig) bool {
	mctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if !t.deps.Mover.MoveTo(mctx, target, cfg) {
		reason := "unreachable"
		if errors.Is(mctx.Err(), context.DeadlineExceeded) {
			reason = "timeout"
		}
		t.log.Warn("Movement failed", "target", target, "reason", reason)
		return false
	}
	return true
}

// inspectionOrder lists stale traps first, then the rest by coordinate.
func (t *Task) inspectionOrder() []traps.Record {
	stale := t.ledger.Stale(t.deps.Clock().Add(-t.cfg.StaleAfter))
	seen := make(map[core.Coordinate]bool, len(stale))
	out := make([]traps.Record, 0, t.ledger.Len())
	for _, r := range stale {
		seen[r.Coordinate] = true
		out = append(out, r)
	}
	for _, r := range t.ledger.Placed() {
		if !seen[r.Coordinate] {
			out = append(out, r)
		}
	}
	return out
}

func (t *Task) block(c core.Coordinate) {
	t.blocked[c] = t.deps.Clock().Add(t.cfg.BlockedCooldown)
	t.log.Info("Tile occupied by something else", "coordinate", c, "cooldown", t.cfg.BlockedCooldown)
	t.record(core.EventBlocked, c, nil)
}

// holdOff keeps a trap whose collection failed out of maintenance for the
// cooldown so the other traps still get serviced.
func (t *Task) holdOff(c core.Coordinate) {
	t.blocked[c] = t.deps.Clock().Add(t.cfg.BlockedCooldown)
	t.record(core.EventBlocked, c, map[string]any{"action": ActionCollect.String()})
}

func (t *Task) isBlocked(c core.Coordinate) bool {
	_, ok := t.blocked[c]
	return ok
}

func (t *Task) expireBlocked() {
	now := t.deps.Clock()
	for c, until := range t.blocked {
		if !now.Before(until) {
			delete(t.blocked, c)
		}
	}
}

// occupiedSnapshot is the ledger snapshot plus tiles still on cooldown.
func (t *Task) occupiedSnapshot() core.TrapSet {
	snap := t.ledger.Snapshot()
	if len(t.blocked) == 0 {
		return snap
	}
	blocked := make([]core.Coordinate, 0, len(t.blocked))
	for c := range t.blocked {
		blocked = append(blocked, c)
	}
	return snap.Union(core.NewTrapSet(blocked...))
}

// nextDelay draws a delay in [MinDelay, MaxDelay] with millisecond granularity.
func (t *Task) nextDelay() time.Duration {
	span := int((t.cfg.MaxDelay - t.cfg.MinDelay) / time.Millisecond)
	if span <= 0 {
		return t.cfg.MinDelay
	}
	return t.cfg.MinDelay + time.Duration(t.deps.Rand.Intn(span+1))*time.Millisecond
}

func (t *Task) record(kind core.EventKind, c core.Coordinate, details map[string]any) {
	if t.deps.Recorder == nil {
		return
	}
	t.deps.Recorder.Record(core.TrapEvent{
		Time:       t.deps.Clock(),
		Task:       t.cfg.Name,
		TrapType:   t.cfg.TrapItem,
		Kind:       kind,
		Coordinate: c,
		Strategy:   t.cfg.Strategy.Name(),
		Details:    details,
	})
}

func (t *Task) flush() {
	if t.deps.Recorder == nil {
		return
	}
	if err := t.deps.Recorder.Flush(); err != nil {
		t.log.Error("Failed to flush journal", "error", err)
	}
}
