package geo

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/OCAP2/hunter/pkg/core"
)

func TestNewZone_RejectsEmptyBounds(t *testing.T) {
	cases := []struct{ w, h int }{{0, 5}, {5, 0}, {-1, 3}, {3, -2}}
	for _, c := range cases {
		if _, err := NewZone(0, 0, c.w, c.h, 0); !errors.Is(err, ErrInvalidZone) {
			t.Errorf("NewZone(w=%d,h=%d): expected ErrInvalidZone, got %v", c.w, c.h, err)
		}
	}
}

func TestRandomPosition_StaysInside(t *testing.T) {
	z := MustZone(3200, 3400, 7, 4, 1)
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 10000; i++ {
		c := z.RandomPosition(r)
		if c.X < 3200 || c.X > 3206 {
			t.Fatalf("sample %d: x=%d out of [3200,3206]", i, c.X)
		}
		if c.Y < 3400 || c.Y > 3403 {
			t.Fatalf("sample %d: y=%d out of [3400,3403]", i, c.Y)
		}
		if c.Plane != 1 {
			t.Fatalf("sample %d: plane=%d, expected 1", i, c.Plane)
		}
	}
}

func TestRandomPosition_SingleTile(t *testing.T) {
	z := MustZone(10, 20, 1, 1, 0)
	r := rand.New(rand.NewSource(1))
	if got := z.RandomPosition(r); got != core.NewCoordinate(10, 20, 0) {
		t.Errorf("expected the only tile, got %v", got)
	}
}

func TestCenter(t *testing.T) {
	z := MustZone(100, 200, 5, 4, 0)
	if got := z.Center(); got != core.NewCoordinate(102, 202, 0) {
		t.Errorf("expected 102,202,0, got %v", got)
	}
}

func TestEdgeAnchor(t *testing.T) {
	z := MustZone(100, 200, 5, 4, 2)

	tests := []struct {
		name   string
		player core.Coordinate
		known  bool
		want   core.Coordinate
	}{
		{"row inside", core.NewCoordinate(90, 201, 2), true, core.NewCoordinate(104, 201, 2)},
		{"row above clamps", core.NewCoordinate(90, 150, 2), true, core.NewCoordinate(104, 200, 2)},
		{"row below clamps", core.NewCoordinate(90, 999, 2), true, core.NewCoordinate(104, 203, 2)},
		{"unknown uses centre row", core.Coordinate{}, false, core.NewCoordinate(104, 202, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := z.EdgeAnchor(tt.player, tt.known); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestContains(t *testing.T) {
	z := MustZone(0, 0, 3, 2, 0)

	inside := []core.Coordinate{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 0}}
	for _, c := range inside {
		if !z.Contains(c) {
			t.Errorf("expected %v inside", c)
		}
	}

	outside := []core.Coordinate{{X: 3, Y: 0}, {X: 0, Y: 2}, {X: -1, Y: 0}, {X: 1, Y: 1, Plane: 1}}
	for _, c := range outside {
		if z.Contains(c) {
			t.Errorf("expected %v outside", c)
		}
	}
}

func TestZones_PrimaryAndContains(t *testing.T) {
	var empty Zones
	if _, ok := empty.Primary(); ok {
		t.Error("expected no primary zone in an empty list")
	}

	zs := Zones{MustZone(0, 0, 2, 2, 0), MustZone(10, 10, 2, 2, 0)}
	primary, ok := zs.Primary()
	if !ok || primary.Origin() != core.NewCoordinate(0, 0, 0) {
		t.Errorf("unexpected primary zone %v", primary.Origin())
	}
	if !zs.Contains(core.NewCoordinate(11, 11, 0)) {
		t.Error("expected second zone to contain 11,11")
	}
	if zs.Contains(core.NewCoordinate(5, 5, 0)) {
		t.Error("expected 5,5 outside every zone")
	}
}

func TestParseZone(t *testing.T) {
	z, err := ParseZone("3200, 3400, 6, 5, 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z.Origin() != core.NewCoordinate(3200, 3400, 1) || z.Width() != 6 || z.Height() != 5 {
		t.Errorf("unexpected zone %v %dx%d", z.Origin(), z.Width(), z.Height())
	}

	z, err = ParseZone("1,2,3,4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z.Plane() != 0 {
		t.Errorf("expected default plane 0, got %d", z.Plane())
	}

	for _, bad := range []string{"", "1,2,3", "1,2,3,x", "1,2,0,4", "1,2,3,4,5,6"} {
		if _, err := ParseZone(bad); !errors.Is(err, ErrInvalidZone) {
			t.Errorf("ParseZone(%q): expected ErrInvalidZone, got %v", bad, err)
		}
	}
}
