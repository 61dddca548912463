package hunting

import (
	"context"
	"time"

	"github.com/OCAP2/hunter/pkg/core"
)

// Action is what the interaction collaborator is asked to do on a tile.
type Action int

const (
	ActionPlace Action = iota
	ActionCollect
	ActionInspect
)

func (a Action) String() string {
	switch a {
	case ActionPlace:
		return "place"
	case ActionCollect:
		return "collect"
	default:
		return "inspect"
	}
}

// Outcome is the result of an interaction.
type Outcome int

const (
	// OutcomeSucceeded means the action worked; for an inspection the trap is
	// set and idle.
	OutcomeSucceeded Outcome = iota
	// OutcomeMissing means no trap of ours is on the tile.
	OutcomeMissing
	// OutcomeOccupiedByOther means something else holds the tile.
	OutcomeOccupiedByOther
	// OutcomeTriggered means the trap caught something and needs collecting.
	OutcomeTriggered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeMissing:
		return "missing"
	case OutcomeOccupiedByOther:
		return "occupied-by-other"
	default:
		return "triggered"
	}
}

// MovementConfig bounds a single move.
type MovementConfig struct {
	// Tolerance is how many tiles away from the target still counts as arrived.
	Tolerance int
	// Timeout after which the move counts as failed.
	Timeout time.Duration
}

// Inventory reports item counts. ok is false when the item group cannot be resolved.
type Inventory interface {
	Count(item string) (count int, ok bool)
}

// Locator reports the player position. ok is false until the world is loaded.
type Locator interface {
	Position() (core.Coordinate, bool)
}

// Mover walks the player to a tile. It returns false on failure, including
// when ctx expires; it does not panic on unreachable targets.
type Mover interface {
	MoveTo(ctx context.Context, target core.Coordinate, cfg MovementConfig) bool
}

// Interactor performs an action on a tile and reports the outcome.
type Interactor interface {
	Interact(ctx context.Context, target core.Coordinate, action Action) Outcome
}

// Restocker refills supplies. Optional.
type Restocker interface {
	Restock(ctx context.Context, item string) bool
}

// Recorder receives journal events. Optional.
type Recorder interface {
	Record(e core.TrapEvent)
	Flush() error
}
