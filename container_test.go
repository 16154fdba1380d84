package axon

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// CounterState is a minimal state type for store tests.
type CounterState struct {
	Count int
}

// settle blocks until every job submitted before it has been applied,
// using the read-after-write guarantee of WithState.
func settle[S any](t *testing.T, c *Container[S]) {
	t.Helper()
	done := make(chan struct{})
	c.WithState(func(S) { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("container did not settle")
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestContainer_InitialState(t *testing.T) {
	c := New(CounterState{Count: 7})
	defer c.Dispose()

	if got := c.State(); got.Count != 7 {
		t.Errorf("expected initial count 7, got %d", got.Count)
	}
}

func TestContainer_SetStateAppliesReducer(t *testing.T) {
	c := New(CounterState{})
	defer c.Dispose()

	c.SetState(func(s CounterState) CounterState {
		s.Count++
		return s
	})
	settle(t, c)

	if got := c.State(); got.Count != 1 {
		t.Errorf("expected count 1, got %d", got.Count)
	}
}

func TestContainer_ReadAfterWrite(t *testing.T) {
	c := New(CounterState{})
	defer c.Dispose()

	var observed1, observed2 int
	done := make(chan struct{})

	c.SetState(func(s CounterState) CounterState {
		s.Count = 1
		return s
	})
	c.WithState(func(s CounterState) { observed1 = s.Count })
	c.SetState(func(s CounterState) CounterState {
		s.Count = 2
		return s
	})
	c.WithState(func(s CounterState) {
		observed2 = s.Count
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reads did not complete")
	}

	if observed1 != 1 {
		t.Errorf("first read observed %d, want 1: it must see the first set but not the second", observed1)
	}
	if observed2 != 2 {
		t.Errorf("second read observed %d, want 2", observed2)
	}
}

func TestContainer_ConcurrentSetters(t *testing.T) {
	c := New(CounterState{})
	defer c.Dispose()

	const goroutines = 10
	const perGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				c.SetState(func(s CounterState) CounterState {
					s.Count++
					return s
				})
			}
		}()
	}
	wg.Wait()
	settle(t, c)

	if got := c.State(); got.Count != goroutines*perGoroutine {
		t.Errorf("expected count %d, got %d", goroutines*perGoroutine, got.Count)
	}
}

func TestContainer_NoOpMutationSuppressed(t *testing.T) {
	c := New(CounterState{Count: 3})
	defer c.Dispose()

	var notifications int
	c.Subscribe(func(CounterState) {
		notifications++
	}, WithExecutor[CounterState](Inline))

	c.SetState(func(s CounterState) CounterState {
		return s
	})
	settle(t, c)

	if notifications != 0 {
		t.Errorf("expected no notification for a value-equal commit, got %d", notifications)
	}
}

func TestContainer_CustomEqual(t *testing.T) {
	// Equality on Count only: a Label change is a no-op.
	type LabeledState struct {
		Count int
		Label string
	}

	c := New(LabeledState{}).
		Equal(func(a, b LabeledState) bool { return a.Count == b.Count })
	defer c.Dispose()

	var notifications int
	c.Subscribe(func(LabeledState) {
		notifications++
	}, WithExecutor[LabeledState](Inline))

	c.SetState(func(s LabeledState) LabeledState {
		s.Label = "changed"
		return s
	})
	settle(t, c)

	if notifications != 0 {
		t.Errorf("expected custom equality to suppress the commit, got %d notifications", notifications)
	}
}

func TestContainer_DisposeDropsPendingJobs(t *testing.T) {
	c := New(CounterState{})

	var delivered atomic.Int64
	c.Subscribe(func(CounterState) {
		delivered.Add(1)
	}, WithExecutor[CounterState](Inline))

	for i := 0; i < 1000; i++ {
		c.SetState(func(s CounterState) CounterState {
			s.Count++
			return s
		})
	}
	c.Dispose()

	after := delivered.Load()
	time.Sleep(20 * time.Millisecond)
	if got := delivered.Load(); got != after {
		t.Errorf("subscriber invoked after Dispose returned: %d -> %d", after, got)
	}

	c.SetState(func(s CounterState) CounterState {
		s.Count++
		return s
	})
	time.Sleep(20 * time.Millisecond)
	if got := delivered.Load(); got != after {
		t.Errorf("subscriber invoked for a set submitted after Dispose: %d -> %d", after, got)
	}
}

func TestContainer_DisposeIdempotent(t *testing.T) {
	c := New(CounterState{})
	c.Dispose()
	c.Dispose()
}

func TestContainer_SubscribeAfterDisposeIsInert(t *testing.T) {
	c := New(CounterState{})
	c.Dispose()

	sub := c.Subscribe(func(CounterState) {
		t.Error("subscriber invoked on a disposed container")
	})
	sub.Cancel()

	if got := c.Subscribers(); got != 0 {
		t.Errorf("expected 0 subscribers, got %d", got)
	}
}

func TestContainer_StateDoesNotWaitForQueue(t *testing.T) {
	c := New(CounterState{Count: 1})
	defer c.Dispose()

	release := make(chan struct{})
	c.WithState(func(CounterState) { <-release })
	c.SetState(func(s CounterState) CounterState {
		s.Count = 2
		return s
	})

	// The queue is blocked; State must still return the last commit.
	if got := c.State(); got.Count != 1 {
		t.Errorf("expected snapshot of last commit (1), got %d", got.Count)
	}
	close(release)
	settle(t, c)

	if got := c.State(); got.Count != 2 {
		t.Errorf("expected count 2 after drain, got %d", got.Count)
	}
}
