// pkg/core/coordinate.go
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCoordinate is returned when a coordinate string cannot be parsed
var ErrInvalidCoordinate = errors.New("invalid coordinate provided")

// Coordinate is a tile position on a plane. It is a comparable value and is
// used as the key for all trap tracking.
type Coordinate struct {
	X     int
	Y     int
	Plane int
}

// NewCoordinate returns the coordinate (x, y, plane).
func NewCoordinate(x, y, plane int) Coordinate {
	return Coordinate{X: x, Y: y, Plane: plane}
}

// Offset returns the coordinate shifted by dx, dy on the same plane.
func (c Coordinate) Offset(dx, dy int) Coordinate {
	return Coordinate{X: c.X + dx, Y: c.Y + dy, Plane: c.Plane}
}

// Chebyshev returns the tile distance between two coordinates, or -1 when
// they are on different planes.
func (c Coordinate) Chebyshev(other Coordinate) int {
	if c.Plane != other.Plane {
		return -1
	}
	return max(abs(c.X-other.X), abs(c.Y-other.Y))
}

// String formats the coordinate as "x,y,plane".
func (c Coordinate) String() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Plane)
}

// ParseCoordinate parses "x,y" or "x,y,plane" into a Coordinate.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, ErrInvalidCoordinate
	}
	values := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Coordinate{}, ErrInvalidCoordinate
		}
		values[i] = v
	}
	return Coordinate{X: values[0], Y: values[1], Plane: values[2]}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
