// pkg/core/trapset.go
package core

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// TrapSet is a read-only snapshot of trap coordinates. The zero value is an
// empty set. Union returns a new set rather than growing the receiver.
type TrapSet struct {
	set *mapset.Set[Coordinate]
}

// NewTrapSet builds a snapshot holding the given coordinates.
func NewTrapSet(coords ...Coordinate) TrapSet {
	s := mapset.New[Coordinate]()
	for _, c := range coords {
		s.Put(c)
	}
	return TrapSet{set: &s}
}

// Contains reports whether c is in the snapshot.
func (t TrapSet) Contains(c Coordinate) bool {
	if t.set == nil {
		return false
	}
	return t.set.Has(c)
}

// Len returns the number of coordinates in the snapshot.
func (t TrapSet) Len() int {
	if t.set == nil {
		return 0
	}
	return t.set.Size()
}

// Slice returns the coordinates ordered by plane, y, then x.
func (t TrapSet) Slice() []Coordinate {
	out := make([]Coordinate, 0, t.Len())
	if t.set != nil {
		t.set.Each(func(c Coordinate) {
			out = append(out, c)
		})
	}
	slices.SortFunc(out, Compare)
	return out
}

// Union returns a new snapshot holding the coordinates of both sets.
func (t TrapSet) Union(other TrapSet) TrapSet {
	return NewTrapSet(append(t.Slice(), other.Slice()...)...)
}

// Compare orders coordinates by plane, y, then x.
func Compare(a, b Coordinate) int {
	switch {
	case a.Plane != b.Plane:
		return a.Plane - b.Plane
	case a.Y != b.Y:
		return a.Y - b.Y
	default:
		return a.X - b.X
	}
}
