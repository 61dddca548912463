package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/OCAP2/hunter/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ZONES
// A zone is an axis-aligned rectangle of tiles on a single plane. Bounds are
// inclusive on the origin side and exclusive on the far side, so a zone of
// width w covers x in [X, X+w-1].

// ErrInvalidZone is returned when a zone has a non-positive width or height
var ErrInvalidZone = errors.New("invalid zone provided")

// Rand is the random source used for sampling. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Zone is an immutable rectangle of tiles in which traps may be placed.
type Zone struct {
	x, y          int
	width, height int
	plane         int
	envelope      geom.Envelope
}

// NewZone creates a zone with origin (x, y) on the given plane.
func NewZone(x, y, width, height, plane int) (Zone, error) {
	if width <= 0 || height <= 0 {
		return Zone{}, ErrInvalidZone
	}
	env, err := geom.NewEnvelope([]geom.XY{
		{X: float64(x), Y: float64(y)},
		{X: float64(x + width - 1), Y: float64(y + height - 1)},
	})
	if err != nil {
		return Zone{}, err
	}
	return Zone{
		x:        x,
		y:        y,
		width:    width,
		height:   height,
		plane:    plane,
		envelope: env,
	}, nil
}

// MustZone is NewZone for literals known to be valid; it panics otherwise.
func MustZone(x, y, width, height, plane int) Zone {
	z, err := NewZone(x, y, width, height, plane)
	if err != nil {
		panic(err)
	}
	return z
}

// Origin returns the minimum corner of the zone.
func (z Zone) Origin() core.Coordinate {
	return core.Coordinate{X: z.x, Y: z.y, Plane: z.plane}
}

// Width returns the zone width in tiles.
func (z Zone) Width() int { return z.width }

// Height returns the zone height in tiles.
func (z Zone) Height() int { return z.height }

// Plane returns the plane the zone lies on.
func (z Zone) Plane() int { return z.plane }

// RandomPosition returns a uniformly sampled tile inside the zone.
func (z Zone) RandomPosition(r Rand) core.Coordinate {
	return core.Coordinate{
		X:     z.x + r.Intn(z.width),
		Y:     z.y + r.Intn(z.height),
		Plane: z.plane,
	}
}

// Center returns the middle tile of the zone using integer division.
func (z Zone) Center() core.Coordinate {
	return core.Coordinate{
		X:     z.x + z.width/2,
		Y:     z.y + z.height/2,
		Plane: z.plane,
	}
}

// EdgeAnchor returns the tile on the far x edge of the zone in the player's
// row, clamped into the zone. When the player position is unknown the
// vertical centre of the zone is used instead.
func (z Zone) EdgeAnchor(player core.Coordinate, known bool) core.Coordinate {
	row := z.y + z.height/2
	if known {
		row = min(max(player.Y, z.y), z.y+z.height-1)
	}
	return core.Coordinate{
		X:     z.x + z.width - 1,
		Y:     row,
		Plane: z.plane,
	}
}

// Contains reports whether c lies inside the zone on the zone's plane.
func (z Zone) Contains(c core.Coordinate) bool {
	if z.width == 0 || c.Plane != z.plane {
		return false
	}
	return z.envelope.Contains(geom.XY{X: float64(c.X), Y: float64(c.Y)})
}

// Area returns the number of tiles covered by the zone.
func (z Zone) Area() int {
	return z.width * z.height
}

// Zones is an ordered list of zones; the first one is the primary zone.
type Zones []Zone

// Primary returns the first zone, or false if the list is empty.
func (zs Zones) Primary() (Zone, bool) {
	if len(zs) == 0 {
		return Zone{}, false
	}
	return zs[0], true
}

// Contains reports whether any zone contains c.
func (zs Zones) Contains(c core.Coordinate) bool {
	for _, z := range zs {
		if z.Contains(c) {
			return true
		}
	}
	return false
}

// RandomPosition picks a zone uniformly, then a tile inside it.
func (zs Zones) RandomPosition(r Rand) (core.Coordinate, bool) {
	if len(zs) == 0 {
		return core.Coordinate{}, false
	}
	return zs[r.Intn(len(zs))].RandomPosition(r), true
}

// ParseZone parses "x,y,width,height" or "x,y,width,height,plane" into a Zone.
func ParseZone(s string) (Zone, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 4 || len(parts) > 5 {
		return Zone{}, ErrInvalidZone
	}
	values := make([]int, 5)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Zone{}, ErrInvalidZone
		}
		values[i] = v
	}
	return NewZone(values[0], values[1], values[2], values[3], values[4])
}
