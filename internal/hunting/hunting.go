// Package hunting implements the task that places, watches and collects traps.
package hunting

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/OCAP2/hunter/internal/geo"
	"github.com/OCAP2/hunter/internal/placement"
	"github.com/OCAP2/hunter/internal/traps"
	"github.com/OCAP2/hunter/pkg/core"
)

// ErrInvalidConfig wraps every construction-time configuration problem
var ErrInvalidConfig = errors.New("invalid hunting task configuration")

// defaults
var (
	DefaultExact           = MovementConfig{Tolerance: 0, Timeout: 10 * time.Second}
	DefaultApproximate     = MovementConfig{Tolerance: 2, Timeout: 15 * time.Second}
	DefaultMinDelay        = 600 * time.Millisecond
	DefaultMaxDelay        = 1200 * time.Millisecond
	DefaultBlockedCooldown = 30 * time.Second
	DefaultStaleAfter      = 2 * time.Minute
)

// DepletionPolicy decides what a cycle does when the trap item runs out.
type DepletionPolicy int

const (
	// DepletionContinue keeps servicing traps that are already out.
	DepletionContinue DepletionPolicy = iota
	// DepletionRestock spends the cycle on the Restocker.
	DepletionRestock
	// DepletionStop makes CanExecute false until supplies come back.
	DepletionStop
)

func (p DepletionPolicy) String() string {
	switch p {
	case DepletionRestock:
		return "restock"
	case DepletionStop:
		return "stop"
	default:
		return "continue"
	}
}

// ParseDepletionPolicy maps "continue", "restock" or "stop" to a policy.
func ParseDepletionPolicy(s string) (DepletionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return DepletionContinue, nil
	case "restock":
		return DepletionRestock, nil
	case "stop":
		return DepletionStop, nil
	default:
		return DepletionContinue, fmt.Errorf("unknown depletion policy: %q", s)
	}
}

// Config describes one hunting task.
type Config struct {
	Name     string
	TrapItem string
	Zones    geo.Zones
	MaxTraps int
	Strategy placement.Strategy

	Exact       MovementConfig
	Approximate MovementConfig

	MinDelay time.Duration
	MaxDelay time.Duration

	// BlockedCooldown is how long a tile found occupied by something else is
	// kept out of placement.
	BlockedCooldown time.Duration
	// StaleAfter moves traps placed longer ago than this to the front of the
	// inspection order.
	StaleAfter time.Duration

	Depletion DepletionPolicy
	// Precondition, when set, gates CanExecute.
	Precondition func() bool
}

// Dependencies holds the collaborators a task drives.
type Dependencies struct {
	Inventory  Inventory
	Locator    Locator
	Mover      Mover
	Interactor Interactor
	Restocker  Restocker
	Recorder   Recorder

	Rand   geo.Rand
	Logger *slog.Logger
	Clock  func() time.Time
}

// Task places traps through its strategy, watches them and collects catches.
// A Task is driven by one caller at a time.
type Task struct {
	cfg    Config
	deps   Dependencies
	ledger *traps.Manager
	log    *slog.Logger

	blocked  map[core.Coordinate]time.Time
	depleted bool
	halted   bool
}

// New validates cfg and builds a task with an empty ledger.
func New(cfg Config, deps Dependencies) (*Task, error) {
	applyDefaults(&cfg, &deps)
	if err := validate(cfg, deps); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	t := &Task{
		cfg:     cfg,
		deps:    deps,
		ledger:  traps.NewManager(cfg.TrapItem, cfg.MaxTraps, traps.WithClock(deps.Clock)),
		log:     deps.Logger.With("task", cfg.Name, "strategy", cfg.Strategy.Name()),
		blocked: make(map[core.Coordinate]time.Time),
	}
	t.Reset()
	return t, nil
}

func applyDefaults(cfg *Config, deps *Dependencies) {
	if cfg.Name == "" {
		cfg.Name = "hunting"
	}
	if cfg.Exact.Timeout == 0 {
		cfg.Exact = DefaultExact
	}
	if cfg.Approximate.Timeout == 0 {
		cfg.Approximate = DefaultApproximate
	}
	if cfg.MinDelay == 0 && cfg.MaxDelay == 0 {
		cfg.MinDelay, cfg.MaxDelay = DefaultMinDelay, DefaultMaxDelay
	}
	if cfg.BlockedCooldown == 0 {
		cfg.BlockedCooldown = DefaultBlockedCooldown
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
}

func validate(cfg Config, deps Dependencies) error {
	var err error
	if cfg.TrapItem == "" {
		err = multierr.Append(err, errors.New("trap item is required"))
	}
	if len(cfg.Zones) == 0 {
		err = multierr.Append(err, errors.New("at least one zone is required"))
	}
	if cfg.MaxTraps <= 0 {
		err = multierr.Append(err, fmt.Errorf("maxTraps must be positive, got %d", cfg.MaxTraps))
	}
	if cfg.Strategy == nil {
		err = multierr.Append(err, errors.New("placement strategy is required"))
	}
	if cfg.MinDelay < 0 || cfg.MaxDelay < cfg.MinDelay {
		err = multierr.Append(err, fmt.Errorf("delay range [%s, %s] is invalid", cfg.MinDelay, cfg.MaxDelay))
	}
	if cfg.Exact.Timeout < 0 || cfg.Approximate.Timeout < 0 {
		err = multierr.Append(err, errors.New("movement timeouts must be positive"))
	}
	if cfg.Exact.Tolerance < 0 || cfg.Approximate.Tolerance < 0 {
		err = multierr.Append(err, errors.New("movement tolerance must not be negative"))
	}
	if deps.Inventory == nil {
		err = multierr.Append(err, errors.New("inventory collaborator is required"))
	}
	if deps.Locator == nil {
		err = multierr.Append(err, errors.New("locator collaborator is required"))
	}
	if deps.Mover == nil {
		err = multierr.Append(err, errors.New("mover collaborator is required"))
	}
	if deps.Interactor == nil {
		err = multierr.Append(err, errors.New("interactor collaborator is required"))
	}
	if cfg.Depletion == DepletionRestock && deps.Restocker == nil {
		err = multierr.Append(err, errors.New("restock policy needs a restocker"))
	}
	return err
}

// Reset drops all tracked and blocked tiles.
func (t *Task) Reset() {
	t.ledger.ClearAllTraps()
	clear(t.blocked)
	t.depleted = false
	t.halted = false
}

// Name returns the task name.
func (t *Task) Name() string { return t.cfg.Name }

// Ledger exposes the trap ledger for inspection.
func (t *Task) Ledger() *traps.Manager { return t.ledger }

// Strategy returns the placement strategy.
func (t *Task) Strategy() placement.Strategy { return t.cfg.Strategy }

// Zones returns the configured zones.
func (t *Task) Zones() geo.Zones { return t.cfg.Zones }

// Exact returns the movement configuration used for placing and collecting.
func (t *Task) Exact() MovementConfig { return t.cfg.Exact }

// Approximate returns the movement configuration used for repositioning.
func (t *Task) Approximate() MovementConfig { return t.cfg.Approximate }

// Depleted reports whether the last supply check found no trap items.
func (t *Task) Depleted() bool { return t.depleted }

// CanExecute is true unless the precondition fails or the task stopped on
// depletion and supplies are still missing.
func (t *Task) CanExecute() bool {
	if t.cfg.Precondition != nil && !t.cfg.Precondition() {
		return false
	}
	if t.halted {
		if !t.HasSupplies() {
			return false
		}
		t.halted = false
		t.depleted = false
	}
	return true
}

// HasSupplies reports whether at least one trap item is in the inventory.
func (t *Task) HasSupplies() bool {
	n, ok := t.deps.Inventory.Count(t.cfg.TrapItem)
	return ok && n > 0
}
