package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultDelay is returned when no task is ready so the host loop never spins.
const DefaultDelay = 1000 * time.Millisecond

// Task is one unit of polled work.
type Task interface {
	// Name identifies the task in logs and metrics.
	Name() string
	// CanExecute reports whether the task wants this poll.
	CanExecute() bool
	// Execute runs one bounded cycle and returns how long the host should
	// wait before polling again.
	Execute(ctx context.Context) time.Duration
}

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Manager holds tasks in priority order. Each poll runs the first task whose
// precondition holds. It never starts goroutines; the host owns the cadence.
type Manager struct {
	logger Logger

	mu    sync.RWMutex
	tasks []Task

	// OTEL metrics
	registered metric.Int64ObservableGauge
	executed   metric.Int64Counter
	idle       metric.Int64Counter
	duration   metric.Float64Histogram
}

// New creates a new Manager with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Manager, error) {
	m := &Manager{logger: logger}

	mt := meter()

	var err error

	m.registered, err = mt.Int64ObservableGauge(
		"scheduler.tasks.registered",
		metric.WithDescription("Number of registered tasks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registered gauge: %w", err)
	}

	_, err = mt.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			m.mu.RLock()
			defer m.mu.RUnlock()
			o.ObserveInt64(m.registered, int64(len(m.tasks)))
			return nil
		},
		m.registered,
	)
	if err != nil {
		return nil, fmt.Errorf("registering task callback: %w", err)
	}

	m.executed, err = mt.Int64Counter(
		"scheduler.tasks.executed",
		metric.WithDescription("Total task executions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating executed counter: %w", err)
	}

	m.idle, err = mt.Int64Counter(
		"scheduler.polls.idle",
		metric.WithDescription("Polls where no task could execute"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating idle counter: %w", err)
	}

	m.duration, err = mt.Float64Histogram(
		"scheduler.task.duration",
		metric.WithDescription("Wall time of a task cycle"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return m, nil
}

// Register appends tasks; earlier tasks have higher priority.
func (m *Manager) Register(tasks ...Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		if t != nil {
			m.tasks = append(m.tasks, t)
		}
	}
}

// Clear removes every task.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = nil
}

// Tasks returns the registered tasks in priority order.
func (m *Manager) Tasks() []Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// ExecuteNextTask runs the first ready task and returns its delay, or
// DefaultDelay when none is ready.
func (m *Manager) ExecuteNextTask(ctx context.Context) time.Duration {
	for _, t := range m.Tasks() {
		if !t.CanExecute() {
			continue
		}

		name := t.Name()
		attrs := metric.WithAttributes(attribute.String("task", name))
		start := time.Now()

		delay := t.Execute(ctx)
		if delay < 0 {
			delay = 0
		}

		elapsed := time.Since(start)
		m.executed.Add(ctx, 1, attrs)
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
		m.logger.Debug("task executed", "task", name, "duration", elapsed, "delay", delay)
		return delay
	}

	m.idle.Add(ctx, 1)
	m.logger.Debug("no task ready", "delay", DefaultDelay)
	return DefaultDelay
}
