package main

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/OCAP2/hunter/internal/config"
	"github.com/OCAP2/hunter/internal/geo"
	"github.com/OCAP2/hunter/internal/hunting"
	"github.com/OCAP2/hunter/internal/placement"
	"github.com/OCAP2/hunter/internal/sim"
	"github.com/OCAP2/hunter/pkg/core"
)

// startOffset places the simulated player just west of the primary zone when
// no start tile is configured.
const startOffset = 3

// parseZones parses every zone string, reporting all bad entries at once.
func parseZones(specs []string) (geo.Zones, error) {
	var (
		zones geo.Zones
		errs  error
	)
	for i, s := range specs {
		z, err := geo.ParseZone(s)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("zone %d: %w", i, err))
			continue
		}
		zones = append(zones, z)
	}
	if errs != nil {
		return nil, errs
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("no zones configured")
	}
	return zones, nil
}

// buildStrategy turns the strategy settings into a placement strategy.
func buildStrategy(hc config.HunterConfig, r geo.Rand) (placement.Strategy, error) {
	var errs error

	kind, err := placement.ParseKind(hc.Strategy)
	errs = multierr.Append(errs, err)

	opts := []placement.Option{placement.WithRand(r)}

	if hc.Orientation != "" {
		o, err := placement.ParseOrientation(hc.Orientation)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			opts = append(opts, placement.WithOrientation(o))
		}
	}
	if strings.TrimSpace(hc.Anchor) != "" {
		a, err := core.ParseCoordinate(hc.Anchor)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("anchor: %w", err))
		} else {
			opts = append(opts, placement.WithAnchor(a))
		}
	}
	if hc.Recenter {
		opts = append(opts, placement.WithRecenter(hc.MaxDrift))
	}
	if hc.SampleAttempts > 0 {
		opts = append(opts, placement.WithSampleAttempts(hc.SampleAttempts))
	}

	if errs != nil {
		return nil, errs
	}
	return placement.New(kind, hc.MaxTraps, opts...)
}

// buildTaskConfig maps the hunter settings onto a hunting.Config.
func buildTaskConfig(hc config.HunterConfig, r geo.Rand) (hunting.Config, error) {
	var errs error

	zones, err := parseZones(hc.Zones)
	errs = multierr.Append(errs, err)

	strategy, err := buildStrategy(hc, r)
	errs = multierr.Append(errs, err)

	depletion, err := hunting.ParseDepletionPolicy(hc.Depletion)
	errs = multierr.Append(errs, err)

	if errs != nil {
		return hunting.Config{}, errs
	}

	return hunting.Config{
		Name:     hc.Name,
		TrapItem: hc.TrapItem,
		Zones:    zones,
		MaxTraps: hc.MaxTraps,
		Strategy: strategy,
		Exact: hunting.MovementConfig{
			Tolerance: hc.Exact.Tolerance,
			Timeout:   hc.Exact.Timeout,
		},
		Approximate: hunting.MovementConfig{
			Tolerance: hc.Approximate.Tolerance,
			Timeout:   hc.Approximate.Timeout,
		},
		MinDelay:        hc.MinDelay,
		MaxDelay:        hc.MaxDelay,
		BlockedCooldown: hc.BlockedCooldown,
		StaleAfter:      hc.StaleAfter,
		Depletion:       depletion,
	}, nil
}

// buildWorld maps the sim settings onto a sim.Config for the given zones.
func buildWorld(sc config.SimConfig, trapItem string, zones geo.Zones) (sim.Config, error) {
	primary, ok := zones.Primary()
	if !ok {
		return sim.Config{}, fmt.Errorf("no zones configured")
	}

	start := primary.Origin().Offset(-startOffset, primary.Height()/2)
	if strings.TrimSpace(sc.Start) != "" {
		c, err := core.ParseCoordinate(sc.Start)
		if err != nil {
			return sim.Config{}, fmt.Errorf("sim start: %w", err)
		}
		start = c
	}

	return sim.Config{
		Seed:           sc.Seed,
		Start:          start,
		TrapItem:       trapItem,
		Supplies:       sc.Supplies,
		RestockAmount:  sc.RestockAmount,
		TriggerChance:  sc.TriggerChance,
		VanishChance:   sc.VanishChance,
		ForeignChance:  sc.ForeignChance,
		MoveFailChance: sc.MoveFailChance,
		StepTime:       sc.StepTime,
		Zones:          zones,
	}, nil
}
