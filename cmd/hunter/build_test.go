package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/hunter/internal/config"
	"github.com/OCAP2/hunter/internal/geo"
	"github.com/OCAP2/hunter/internal/hunting"
	"github.com/OCAP2/hunter/internal/placement"
	"github.com/OCAP2/hunter/pkg/core"
)

func hunterConfig() config.HunterConfig {
	return config.HunterConfig{
		Name:            "hunting",
		TrapItem:        "box trap",
		Zones:           []string{"100,200,11,11", "120,200,5,5,1"},
		MaxTraps:        4,
		Strategy:        "auto",
		Orientation:     "random",
		MaxDrift:        2,
		SampleAttempts:  10,
		MinDelay:        600 * time.Millisecond,
		MaxDelay:        1200 * time.Millisecond,
		BlockedCooldown: 30 * time.Second,
		StaleAfter:      2 * time.Minute,
		Depletion:       "restock",
		Exact:           config.MovementConfig{Tolerance: 0, Timeout: 10 * time.Second},
		Approximate:     config.MovementConfig{Tolerance: 2, Timeout: 15 * time.Second},
	}
}

func TestParseZones(t *testing.T) {
	zones, err := parseZones([]string{"100,200,11,11", "120,200,5,5,1"})
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, core.NewCoordinate(100, 200, 0), zones[0].Origin())
	assert.Equal(t, 1, zones[1].Plane())
}

func TestParseZones_ReportsEveryBadEntry(t *testing.T) {
	_, err := parseZones([]string{"1,2,3", "1,1,1,1", "a,b,c,d"})
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrInvalidZone)
	assert.Contains(t, err.Error(), "zone 0")
	assert.Contains(t, err.Error(), "zone 2")
	assert.NotContains(t, err.Error(), "zone 1")
}

func TestParseZones_Empty(t *testing.T) {
	_, err := parseZones(nil)
	assert.Error(t, err)
}

func TestBuildStrategy_Auto(t *testing.T) {
	s, err := buildStrategy(hunterConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	auto, ok := s.(*placement.Auto)
	require.True(t, ok)
	assert.IsType(t, &placement.Cross{}, auto.Delegate())
	assert.Equal(t, "Auto (Cross)", s.Name())
}

func TestBuildStrategy_LineWithAnchor(t *testing.T) {
	hc := hunterConfig()
	hc.Strategy = "line"
	hc.Orientation = "vertical"
	hc.Anchor = "105,201"

	s, err := buildStrategy(hc, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	line, ok := s.(*placement.Line)
	require.True(t, ok)
	assert.Equal(t, placement.Vertical, line.Orientation())

	zones, err := parseZones(hc.Zones)
	require.NoError(t, err)
	c, ok := s.FindNextTrapPosition(core.NewCoordinate(90, 205, 0), zones, core.NewTrapSet())
	require.True(t, ok)
	assert.Equal(t, core.NewCoordinate(105, 201, 0), c)
}

func TestBuildStrategy_AggregatesErrors(t *testing.T) {
	hc := hunterConfig()
	hc.Strategy = "cros"
	hc.Orientation = "diagonal"
	hc.Anchor = "nowhere"

	_, err := buildStrategy(hc, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, placement.ErrUnknownStrategy)
	assert.ErrorIs(t, err, placement.ErrUnknownOrientation)
	assert.ErrorIs(t, err, core.ErrInvalidCoordinate)
	assert.Contains(t, err.Error(), `did you mean "cross"`)
}

func TestBuildStrategy_InvalidMaxTraps(t *testing.T) {
	hc := hunterConfig()
	hc.MaxTraps = 0

	_, err := buildStrategy(hc, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, placement.ErrInvalidMaxTraps)
}

func TestBuildTaskConfig(t *testing.T) {
	cfg, err := buildTaskConfig(hunterConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, "box trap", cfg.TrapItem)
	assert.Len(t, cfg.Zones, 2)
	assert.Equal(t, 4, cfg.MaxTraps)
	assert.Equal(t, hunting.DepletionRestock, cfg.Depletion)
	assert.Equal(t, hunting.MovementConfig{Tolerance: 2, Timeout: 15 * time.Second}, cfg.Approximate)
	assert.Equal(t, 30*time.Second, cfg.BlockedCooldown)
	assert.NotNil(t, cfg.Strategy)
}

func TestBuildTaskConfig_AggregatesErrors(t *testing.T) {
	hc := hunterConfig()
	hc.Zones = []string{"bad"}
	hc.Depletion = "panic"

	_, err := buildTaskConfig(hc, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrInvalidZone)
	assert.Contains(t, err.Error(), "unknown depletion policy")
}

func TestBuildWorld_DefaultStart(t *testing.T) {
	zones, err := parseZones([]string{"100,200,11,11"})
	require.NoError(t, err)

	wc, err := buildWorld(config.SimConfig{Seed: 7, Supplies: 3}, "box trap", zones)
	require.NoError(t, err)

	assert.Equal(t, core.NewCoordinate(97, 205, 0), wc.Start)
	assert.False(t, zones.Contains(wc.Start))
	assert.Equal(t, int64(7), wc.Seed)
	assert.Equal(t, "box trap", wc.TrapItem)
	assert.Equal(t, 3, wc.Supplies)
}

func TestBuildWorld_ConfiguredStart(t *testing.T) {
	zones, err := parseZones([]string{"100,200,11,11"})
	require.NoError(t, err)

	wc, err := buildWorld(config.SimConfig{Start: "104,204"}, "box trap", zones)
	require.NoError(t, err)
	assert.Equal(t, core.NewCoordinate(104, 204, 0), wc.Start)

	_, err = buildWorld(config.SimConfig{Start: "x"}, "box trap", zones)
	assert.ErrorIs(t, err, core.ErrInvalidCoordinate)
}
