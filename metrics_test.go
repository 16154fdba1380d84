package axon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestNoOpMetricsProvider_DoesNotPanic(_ *testing.T) {
	var m NoOpMetricsProvider

	// These should not panic
	m.OnCommit(100 * time.Millisecond)
	m.OnSkip()
	m.OnNotify(3)
	m.OnOperationStart()
	m.OnOperationEnd(StatusSuccess, 50*time.Millisecond)
}

// recordingMetrics counts callbacks for assertions.
type recordingMetrics struct {
	mu         sync.Mutex
	commits    int
	skips      int
	notified   int
	opStarts   int
	opEnds     int
	lastStatus Status
}

func (m *recordingMetrics) OnCommit(_ time.Duration) {
	m.mu.Lock()
	m.commits++
	m.mu.Unlock()
}

func (m *recordingMetrics) OnSkip() {
	m.mu.Lock()
	m.skips++
	m.mu.Unlock()
}

func (m *recordingMetrics) OnNotify(subscribers int) {
	m.mu.Lock()
	m.notified += subscribers
	m.mu.Unlock()
}

func (m *recordingMetrics) OnOperationStart() {
	m.mu.Lock()
	m.opStarts++
	m.mu.Unlock()
}

func (m *recordingMetrics) OnOperationEnd(status Status, _ time.Duration) {
	m.mu.Lock()
	m.opEnds++
	m.lastStatus = status
	m.mu.Unlock()
}

func TestMetrics_CommitAndSkip(t *testing.T) {
	m := &recordingMetrics{}
	c := New(CounterState{}).
		Metrics(m).
		Clock(clockz.NewFakeClock())
	defer c.Dispose()

	c.Subscribe(func(CounterState) {}, WithExecutor[CounterState](Inline))

	c.SetState(func(s CounterState) CounterState { s.Count++; return s })
	c.SetState(func(s CounterState) CounterState { return s })
	settle(t, c)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commits != 1 {
		t.Errorf("expected 1 commit, got %d", m.commits)
	}
	if m.skips != 1 {
		t.Errorf("expected 1 skip, got %d", m.skips)
	}
	if m.notified != 1 {
		t.Errorf("expected 1 notified subscriber, got %d", m.notified)
	}
}

func TestMetrics_OperationLifecycle(t *testing.T) {
	m := &recordingMetrics{}
	c := New(FetchState{Result: Uninitialized[int]()}).
		Metrics(m)
	defer c.Dispose()

	Execute(c,
		Call(func(context.Context) (int, error) { return 1, nil }),
		Identity[int],
		reduceFetch,
	)
	waitFor(t, func() bool { return c.State().Result.Complete() }, "operation did not complete")
	waitFor(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.opEnds == 1
	}, "operation end was not reported")

	m.mu.Lock()
	starts, status := m.opStarts, m.lastStatus
	m.mu.Unlock()
	if starts != 1 {
		t.Errorf("expected 1 operation start, got %d", starts)
	}
	if status != StatusSuccess {
		t.Errorf("expected StatusSuccess, got %v", status)
	}

	Execute(c,
		Call(func(context.Context) (int, error) { return 0, errors.New("boom") }),
		Identity[int],
		reduceFetch,
	)
	waitFor(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.opEnds == 2 && m.lastStatus == StatusFail
	}, "failed operation end was not reported")
}
