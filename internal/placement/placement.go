// Package placement holds the strategies that decide where the next trap goes.
//
// Every strategy lays out a fixed pattern of slots around an anchor tile and
// proposes the first free slot that lies inside one of the configured zones.
// When the pattern is used up but capacity remains, a bounded number of random
// samples is drawn from the zones instead. A strategy never proposes a tile
// contained in the existing-traps snapshot it was given.
package placement

import (
	"errors"
	"math/rand"
	"time"

	"github.com/OCAP2/hunter/internal/geo"
	"github.com/OCAP2/hunter/pkg/core"
)

// DefaultSampleAttempts bounds random sampling once a pattern is exhausted.
const DefaultSampleAttempts = 10

// ErrInvalidMaxTraps is returned when a strategy is built with maxTraps <= 0
var ErrInvalidMaxTraps = errors.New("maxTraps must be positive")

// Strategy proposes trap positions.
type Strategy interface {
	// Name is a stable identifier for logs.
	Name() string
	// Description is a human readable summary for logs.
	Description() string
	// FindNextTrapPosition returns the next tile to place a trap on, or false
	// when no valid candidate exists this cycle.
	FindNextTrapPosition(player core.Coordinate, zones geo.Zones, existing core.TrapSet) (core.Coordinate, bool)
	// IsValidPosition re-checks a candidate right before it is acted on.
	IsValidPosition(candidate core.Coordinate, existing core.TrapSet) bool
}

// Option configures a strategy.
type Option func(*options)

type options struct {
	anchor         core.Coordinate
	hasAnchor      bool
	orientation    Orientation
	rand           geo.Rand
	recenter       bool
	maxDrift       int
	sampleAttempts int
}

// WithAnchor pins the pattern to a fixed tile instead of deriving it from the zones.
func WithAnchor(c core.Coordinate) Option {
	return func(o *options) {
		o.anchor = c
		o.hasAnchor = true
	}
}

// WithOrientation selects the line orientation. Only Line uses it.
func WithOrientation(orientation Orientation) Option {
	return func(o *options) {
		o.orientation = orientation
	}
}

// WithRand sets the random source used for sampling and orientation draws.
func WithRand(r geo.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

// WithRecenter lets the X-shape move its anchor to the player once every
// trap is gone, at most maxDrift tiles per axis away from the original anchor.
func WithRecenter(maxDrift int) Option {
	return func(o *options) {
		o.recenter = true
		o.maxDrift = max(maxDrift, 0)
	}
}

// WithSampleAttempts overrides DefaultSampleAttempts.
func WithSampleAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sampleAttempts = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		orientation:    Random,
		sampleAttempts: DefaultSampleAttempts,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rand == nil {
		o.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// offset is a slot position relative to the anchor
type offset struct{ dx, dy int }

// pattern is the machinery shared by every geometric strategy.
type pattern struct {
	maxTraps int
	opts     options

	// anchor in use; re-resolved whenever the field is empty
	current  core.Coordinate
	resolved bool
}

func newPattern(maxTraps int, opts []Option) (pattern, error) {
	if maxTraps <= 0 {
		return pattern{}, ErrInvalidMaxTraps
	}
	return pattern{maxTraps: maxTraps, opts: buildOptions(opts)}, nil
}

// anchorFor returns the anchor for this call. Once resolved, the anchor is
// kept for as long as any trap is out so the pattern stays put.
func (p *pattern) anchorFor(existing core.TrapSet, compute func() (core.Coordinate, bool)) (core.Coordinate, bool) {
	if p.resolved && existing.Len() > 0 {
		return p.current, true
	}
	if p.opts.hasAnchor && !p.opts.recenter {
		p.current, p.resolved = p.opts.anchor, true
		return p.current, true
	}
	c, ok := compute()
	if !ok {
		return core.Coordinate{}, false
	}
	p.current, p.resolved = c, true
	return c, true
}

// find walks the slots in order and falls back to zone sampling. Capacity is
// the caller's concern: existing may also hold tiles that are blocked rather
// than trapped.
func (p *pattern) find(anchor core.Coordinate, slots []offset, zones geo.Zones, existing core.TrapSet) (core.Coordinate, bool) {
	for _, s := range slots {
		c, ok := slotTile(anchor, s, zones)
		if ok && isFree(c, existing) {
			return c, true
		}
	}
	return p.sample(zones, existing)
}

func (p *pattern) sample(zones geo.Zones, existing core.TrapSet) (core.Coordinate, bool) {
	for i := 0; i < p.opts.sampleAttempts; i++ {
		c, ok := zones.RandomPosition(p.opts.rand)
		if !ok {
			return core.Coordinate{}, false
		}
		if isFree(c, existing) {
			return c, true
		}
	}
	return core.Coordinate{}, false
}

// slotTile resolves a slot, mirroring it through the anchor when the
// straight offset leaves every zone.
func slotTile(anchor core.Coordinate, s offset, zones geo.Zones) (core.Coordinate, bool) {
	c := anchor.Offset(s.dx, s.dy)
	if zones.Contains(c) {
		return c, true
	}
	if s.dx == 0 && s.dy == 0 {
		return core.Coordinate{}, false
	}
	m := anchor.Offset(-s.dx, -s.dy)
	if zones.Contains(m) {
		return m, true
	}
	return core.Coordinate{}, false
}

func isFree(c core.Coordinate, existing core.TrapSet) bool {
	return !existing.Contains(c)
}

// limit returns at most n slots.
func limit(slots []offset, n int) []offset {
	if n < len(slots) {
		return slots[:n]
	}
	return slots
}

func primaryCenter(zones geo.Zones) (core.Coordinate, bool) {
	z, ok := zones.Primary()
	if !ok {
		return core.Coordinate{}, false
	}
	return z.Center(), true
}
