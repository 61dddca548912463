package placement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OCAP2/hunter/internal/geo"
	"github.com/OCAP2/hunter/pkg/core"
)

// ErrUnknownOrientation is returned by ParseOrientation
var ErrUnknownOrientation = errors.New("unknown orientation")

// Orientation of a Line strategy.
type Orientation int

const (
	Random Orientation = iota
	Horizontal
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "random"
	}
}

// ParseOrientation maps "horizontal", "vertical" or "random" to an Orientation.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	case "random", "":
		return Random, nil
	default:
		return Random, fmt.Errorf("%w: %q", ErrUnknownOrientation, s)
	}
}

// Line places traps one tile apart along a row or column, starting at the
// anchor. Without a fixed anchor it starts on the far edge of the primary
// zone in the player's row.
type Line struct {
	pattern
	orientation Orientation
	drawn       bool
}

// NewLine builds a Line. A Random orientation is drawn once here and kept for
// the lifetime of the strategy.
func NewLine(maxTraps int, opts ...Option) (*Line, error) {
	p, err := newPattern(maxTraps, opts)
	if err != nil {
		return nil, err
	}
	l := &Line{pattern: p, orientation: p.opts.orientation}
	if l.orientation == Random {
		l.orientation = Horizontal
		if p.opts.rand.Intn(2) == 1 {
			l.orientation = Vertical
		}
		l.drawn = true
	}
	return l, nil
}

// Orientation returns the orientation in use.
func (l *Line) Orientation() Orientation { return l.orientation }

func (l *Line) Name() string { return "Line" }

func (l *Line) Description() string {
	desc := fmt.Sprintf("Places up to %d traps in a %s line", l.maxTraps, l.orientation)
	if l.drawn {
		desc += " (orientation drawn at random)"
	}
	return desc
}

func (l *Line) FindNextTrapPosition(player core.Coordinate, zones geo.Zones, existing core.TrapSet) (core.Coordinate, bool) {
	anchor, ok := l.anchorFor(existing, func() (core.Coordinate, bool) {
		z, ok := zones.Primary()
		if !ok {
			return core.Coordinate{}, false
		}
		return z.EdgeAnchor(player, true), true
	})
	if !ok {
		return core.Coordinate{}, false
	}
	return l.find(anchor, l.slots(), zones, existing)
}

func (l *Line) IsValidPosition(candidate core.Coordinate, existing core.TrapSet) bool {
	return isFree(candidate, existing)
}

func (l *Line) slots() []offset {
	slots := make([]offset, l.maxTraps)
	for i := range slots {
		if l.orientation == Vertical {
			slots[i] = offset{0, i}
		} else {
			slots[i] = offset{i, 0}
		}
	}
	return slots
}

// LShape places three traps: the anchor as the corner plus one tile along
// each axis.
type LShape struct {
	pattern
}

var lShapeSlots = []offset{{0, 0}, {1, 0}, {0, 1}}

// NewLShape builds an LShape.
func NewLShape(maxTraps int, opts ...Option) (*LShape, error) {
	p, err := newPattern(maxTraps, opts)
	if err != nil {
		return nil, err
	}
	return &LShape{pattern: p}, nil
}

func (s *LShape) Name() string { return "L-Shape" }

func (s *LShape) Description() string {
	return "Places 3 traps in a right angle with the corner on the anchor"
}

func (s *LShape) FindNextTrapPosition(player core.Coordinate, zones geo.Zones, existing core.TrapSet) (core.Coordinate, bool) {
	anchor, ok := s.anchorFor(existing, func() (core.Coordinate, bool) {
		return primaryCenter(zones)
	})
	if !ok {
		return core.Coordinate{}, false
	}
	return s.find(anchor, limit(lShapeSlots, s.maxTraps), zones, existing)
}

func (s *LShape) IsValidPosition(candidate core.Coordinate, existing core.TrapSet) bool {
	return isFree(candidate, existing)
}

// Cross places up to four traps on the cardinal neighbours of the anchor.
type Cross struct {
	pattern
}

var crossSlots = []offset{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// NewCross builds a Cross.
func NewCross(maxTraps int, opts ...Option) (*Cross, error) {
	p, err := newPattern(maxTraps, opts)
	if err != nil {
		return nil, err
	}
	return &Cross{pattern: p}, nil
}

func (s *Cross) Name() string { return "Cross" }

func (s *Cross) Description() string {
	return fmt.Sprintf("Places up to %d traps on the cardinal points around the anchor", min(s.maxTraps, len(crossSlots)))
}

func (s *Cross) FindNextTrapPosition(player core.Coordinate, zones geo.Zones, existing core.TrapSet) (core.Coordinate, bool) {
	anchor, ok := s.anchorFor(existing, func() (core.Coordinate, bool) {
		return primaryCenter(zones)
	})
	if !ok {
		return core.Coordinate{}, false
	}
	return s.find(anchor, limit(crossSlots, s.maxTraps), zones, existing)
}

func (s *Cross) IsValidPosition(candidate core.Coordinate, existing core.TrapSet) bool {
	return isFree(candidate, existing)
}

// XShape places up to five traps: the anchor and its four diagonals.
type XShape struct {
	pattern
}

var xShapeSlots = []offset{{0, 0}, {-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// NewXShape builds an XShape. With WithRecenter the anchor follows the
// player whenever no trap is out.
func NewXShape(maxTraps int, opts ...Option) (*XShape, error) {
	p, err := newPattern(maxTraps, opts)
	if err != nil {
		return nil, err
	}
	return &XShape{pattern: p}, nil
}

func (s *XShape) Name() string { return "X-Shape" }

func (s *XShape) Description() string {
	desc := fmt.Sprintf("Places up to %d traps on the anchor and its diagonals", min(s.maxTraps, len(xShapeSlots)))
	if s.opts.recenter {
		desc += fmt.Sprintf(", recentering within %d tiles", s.opts.maxDrift)
	}
	return desc
}

func (s *XShape) FindNextTrapPosition(player core.Coordinate, zones geo.Zones, existing core.TrapSet) (core.Coordinate, bool) {
	anchor, ok := s.anchorFor(existing, func() (core.Coordinate, bool) {
		origin, ok := s.origin(zones)
		if !ok {
			return core.Coordinate{}, false
		}
		if !s.opts.recenter || player.Plane != origin.Plane {
			return origin, true
		}
		return core.Coordinate{
			X:     clampDrift(player.X, origin.X, s.opts.maxDrift),
			Y:     clampDrift(player.Y, origin.Y, s.opts.maxDrift),
			Plane: origin.Plane,
		}, true
	})
	if !ok {
		return core.Coordinate{}, false
	}
	return s.find(anchor, limit(xShapeSlots, s.maxTraps), zones, existing)
}

func (s *XShape) IsValidPosition(candidate core.Coordinate, existing core.TrapSet) bool {
	return isFree(candidate, existing)
}

// Anchor returns the anchor currently in use, if one has been resolved.
func (s *XShape) Anchor() (core.Coordinate, bool) {
	return s.current, s.resolved
}

func (s *XShape) origin(zones geo.Zones) (core.Coordinate, bool) {
	if s.opts.hasAnchor {
		return s.opts.anchor, true
	}
	return primaryCenter(zones)
}

func clampDrift(v, origin, drift int) int {
	return min(max(v, origin-drift), origin+drift)
}
