package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

// stubTask records how often it ran
type stubTask struct {
	name     string
	ready    bool
	delay    time.Duration
	executed int
	checked  int
}

func (s *stubTask) Name() string { return s.name }

func (s *stubTask) CanExecute() bool {
	s.checked++
	return s.ready
}

func (s *stubTask) Execute(ctx context.Context) time.Duration {
	s.executed++
	return s.delay
}

func newTestManager(t *testing.T) (*Manager, *testLogger) {
	logger := &testLogger{}

	m, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	return m, logger
}

func TestExecuteNextTask_FirstReadyWins(t *testing.T) {
	m, _ := newTestManager(t)

	a := &stubTask{name: "A", ready: false, delay: 100 * time.Millisecond}
	b := &stubTask{name: "B", ready: true, delay: 500 * time.Millisecond}
	c := &stubTask{name: "C", ready: true, delay: 900 * time.Millisecond}
	m.Register(a, b, c)

	got := m.ExecuteNextTask(context.Background())

	if got != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", got)
	}
	if a.executed != 0 {
		t.Error("A must not execute when its precondition fails")
	}
	if b.executed != 1 {
		t.Errorf("expected B to execute once, got %d", b.executed)
	}
	if c.checked != 0 || c.executed != 0 {
		t.Error("tasks after the winner must not be consulted")
	}
}

func TestExecuteNextTask_NoneReadyReturnsDefault(t *testing.T) {
	m, logger := newTestManager(t)

	a := &stubTask{name: "A"}
	b := &stubTask{name: "B"}
	m.Register(a, b)

	if got := m.ExecuteNextTask(context.Background()); got != DefaultDelay {
		t.Errorf("expected default delay, got %v", got)
	}
	if DefaultDelay != time.Second {
		t.Errorf("default delay must be 1000ms, got %v", DefaultDelay)
	}
	if a.executed+b.executed != 0 {
		t.Error("no task should execute")
	}
	if len(logger.messages) == 0 {
		t.Error("expected an idle poll to be logged")
	}
}

func TestExecuteNextTask_Empty(t *testing.T) {
	m, _ := newTestManager(t)

	if got := m.ExecuteNextTask(context.Background()); got != DefaultDelay {
		t.Errorf("expected default delay, got %v", got)
	}
}

func TestExecuteNextTask_NegativeDelayClamped(t *testing.T) {
	m, _ := newTestManager(t)
	m.Register(&stubTask{name: "neg", ready: true, delay: -time.Second})

	if got := m.ExecuteNextTask(context.Background()); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestRegisterAndClear(t *testing.T) {
	m, _ := newTestManager(t)

	m.Register(&stubTask{name: "A"}, nil, &stubTask{name: "B"})
	tasks := m.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Name() != "A" || tasks[1].Name() != "B" {
		t.Errorf("expected insertion order, got %s,%s", tasks[0].Name(), tasks[1].Name())
	}

	m.Clear()
	if len(m.Tasks()) != 0 {
		t.Error("expected no tasks after Clear")
	}
}

func TestPriorityFollowsReadiness(t *testing.T) {
	m, _ := newTestManager(t)

	high := &stubTask{name: "high", delay: time.Millisecond}
	low := &stubTask{name: "low", ready: true, delay: 2 * time.Millisecond}
	m.Register(high, low)

	if got := m.ExecuteNextTask(context.Background()); got != 2*time.Millisecond {
		t.Errorf("expected low to run, got %v", got)
	}

	high.ready = true
	if got := m.ExecuteNextTask(context.Background()); got != time.Millisecond {
		t.Errorf("expected high to run once ready, got %v", got)
	}
	if low.executed != 1 || high.executed != 1 {
		t.Errorf("unexpected executions high=%d low=%d", high.executed, low.executed)
	}
}
