package placement

import (
	"slices"

	"github.com/OCAP2/hunter/internal/geo"
	"github.com/OCAP2/hunter/pkg/core"
)

// Auto picks a geometry from maxTraps once, at construction, and forwards
// every call to it.
//
//	1-2 -> Line (random orientation)
//	3   -> L-Shape
//	4   -> Cross
//	5+  -> X-Shape
type Auto struct {
	delegate Strategy
}

// NewAuto builds an Auto strategy. Options are passed on to the delegate.
func NewAuto(maxTraps int, opts ...Option) (*Auto, error) {
	kind := AutoKindFor(maxTraps)
	if kind == KindLine {
		opts = append(slices.Clip(opts), WithOrientation(Random))
	}
	delegate, err := New(kind, maxTraps, opts...)
	if err != nil {
		return nil, err
	}
	return &Auto{delegate: delegate}, nil
}

// AutoKindFor returns the geometry Auto selects for maxTraps.
func AutoKindFor(maxTraps int) Kind {
	switch {
	case maxTraps <= 2:
		return KindLine
	case maxTraps == 3:
		return KindLShape
	case maxTraps == 4:
		return KindCross
	default:
		return KindXShape
	}
}

// Delegate returns the strategy chosen at construction.
func (a *Auto) Delegate() Strategy { return a.delegate }

func (a *Auto) Name() string {
	return "Auto (" + a.delegate.Name() + ")"
}

func (a *Auto) Description() string {
	return "Auto (" + a.delegate.Description() + ")"
}

func (a *Auto) FindNextTrapPosition(player core.Coordinate, zones geo.Zones, existing core.TrapSet) (core.Coordinate, bool) {
	return a.delegate.FindNextTrapPosition(player, zones, existing)
}

func (a *Auto) IsValidPosition(candidate core.Coordinate, existing core.TrapSet) bool {
	return a.delegate.IsValidPosition(candidate, existing)
}
