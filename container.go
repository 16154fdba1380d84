package axon

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// job is a unit of work on the container queue: either a reducer application
// or a read. Jobs from the same submitter run in submission order, and the
// queue is drained strictly FIFO across all submitters, so a read queued
// after a reducer always observes that reducer's result.
type job[S any] struct {
	reduce func(S) S
	read   func(S)

	// guard, when non-nil, belongs to an async operation. A cancelled
	// operation's queued jobs are dropped without being applied.
	guard context.Context
}

// Container owns a single immutable state value and serializes every
// mutation and read through one sequential worker goroutine. The state is
// exposed only as value snapshots; subscribers never receive a mutable
// reference.
//
// Containers are safe for concurrent use. Instance configuration methods
// (Debug, Clock, Codec, etc.) must be called before the container is
// otherwise used.
type Container[S any] struct {
	equal       func(a, b S) bool
	clock       clockz.Clock
	codec       Codec
	metrics     MetricsProvider
	debug       bool
	onViolation func(error)

	ctx        context.Context
	cancel     context.CancelFunc
	workerDone chan struct{}

	mu      sync.Mutex
	queue   []job[S]
	subs    map[uint64]*subscription[S]
	nextSub uint64

	wake chan struct{}

	// state is owned by the worker; current mirrors the latest commit for
	// lock-free snapshot reads.
	state     S
	current   atomic.Pointer[S]
	lastError atomic.Pointer[error]
	failures  *failureRing

	disposed    atomic.Bool
	disposeOnce sync.Once
	registry    *registry
}

// New creates a Container holding initial as its first committed state and
// starts its worker.
//
// Example:
//
//	container := axon.New(AppState{}).
//	    Debug().
//	    FailureHistorySize(10)
func New[S any](initial S) *Container[S] {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Container[S]{
		equal:       func(a, b S) bool { return reflect.DeepEqual(a, b) },
		clock:       clockz.RealClock,
		codec:       JSONCodec{},
		onViolation: func(err error) { panic(err) },
		ctx:         ctx,
		cancel:      cancel,
		workerDone:  make(chan struct{}),
		subs:        make(map[uint64]*subscription[S]),
		wake:        make(chan struct{}, 1),
		state:       initial,
		registry:    newRegistry(),
	}
	snap := initial
	c.current.Store(&snap)

	capitan.Emit(ctx, ContainerCreated)

	go c.run()
	return c
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Debug enables debug validation: the initial state type is checked
// asynchronously for public constructibility, structural immutability, and a
// codec round trip, and every reducer is applied twice to the same base
// state to detect impurity. Violations go to the OnViolation handler, which
// panics by default. Must be called before the container is otherwise used.
func (c *Container[S]) Debug() *Container[S] {
	c.debug = true
	// Validation runs on the worker, off the calling context, ahead of any
	// reducer submitted afterwards.
	c.enqueue(job[S]{read: func(s S) { c.validateState(s) }})
	return c
}

// Clock sets a custom clock for duration measurement.
// Use clockz.NewFakeClock for deterministic tests.
// Must be called before the container is otherwise used.
func (c *Container[S]) Clock(clock clockz.Clock) *Container[S] {
	c.clock = clock
	return c
}

// Codec sets the codec used by the debug round-trip check.
// Default: JSONCodec. Must be called before the container is otherwise used.
func (c *Container[S]) Codec(codec Codec) *Container[S] {
	c.codec = codec
	return c
}

// Equal sets the value-equality predicate used for commit detection,
// projection comparison, and debug purity checks.
// Default: reflect.DeepEqual. Must be called before the container is
// otherwise used.
func (c *Container[S]) Equal(eq func(a, b S) bool) *Container[S] {
	c.equal = eq
	return c
}

// Metrics sets a metrics provider for observability integration.
// Must be called before the container is otherwise used.
func (c *Container[S]) Metrics(provider MetricsProvider) *Container[S] {
	c.metrics = provider
	return c
}

// FailureHistorySize sets the number of recent operation failures to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before the container is otherwise used.
func (c *Container[S]) FailureHistorySize(n int) *Container[S] {
	c.failures = newFailureRing(n)
	return c
}

// OnViolation sets the handler for debug validation and purity violations.
// The default handler panics. Must be called before the container is
// otherwise used.
func (c *Container[S]) OnViolation(fn func(error)) *Container[S] {
	c.onViolation = fn
	return c
}

// -----------------------------------------------------------------------------
// State Access
// -----------------------------------------------------------------------------

// State returns the most recently committed state snapshot. It never waits
// on pending mutations; use WithState for a read ordered after prior writes.
func (c *Container[S]) State() S {
	return *c.current.Load()
}

// SetState enqueues a reducer for serialized application and returns
// immediately. The reducer must be pure: it receives the state current at
// the time it is dequeued and returns the next state. If the result is
// value-equal to the previous state, the mutation is a no-op and no
// subscriber is notified.
func (c *Container[S]) SetState(reducer func(S) S) {
	c.enqueue(job[S]{reduce: reducer})
}

// WithState enqueues a read. The callback runs on the worker and is
// guaranteed to observe the result of every SetState submitted strictly
// before this call. It must not be used to compose a reducer from a "live"
// value; it is for fan-out and coordination only.
func (c *Container[S]) WithState(fn func(S)) {
	c.enqueue(job[S]{read: fn})
}

// LastError returns the most recent async operation failure, or nil.
func (c *Container[S]) LastError() error {
	ptr := c.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns recent operation failures, oldest first.
// Returns nil unless enabled via FailureHistorySize.
func (c *Container[S]) ErrorHistory() []Failure {
	return c.failures.all()
}

// Subscribers returns the number of live subscriptions.
func (c *Container[S]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Dispose tears the container down: queued jobs are dropped without running,
// the worker stops, and every registered subscription and pending operation
// is cancelled. After Dispose returns no subscriber callback begins.
// Dispose is idempotent.
//
// Dispose joins the worker and must not be called from a subscriber or
// WithState callback.
func (c *Container[S]) Dispose() {
	c.disposeOnce.Do(func() {
		c.disposed.Store(true)
		c.cancel()
		<-c.workerDone
		c.mu.Lock()
		c.queue = nil
		c.mu.Unlock()
		c.registry.close()
		capitan.Emit(context.Background(), ContainerDisposed)
	})
}

// -----------------------------------------------------------------------------
// Worker
// -----------------------------------------------------------------------------

// enqueue appends a job and wakes the worker. Jobs submitted after Dispose
// are dropped.
func (c *Container[S]) enqueue(j job[S]) {
	if c.disposed.Load() {
		return
	}
	c.mu.Lock()
	c.queue = append(c.queue, j)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// submit enqueues a reducer on behalf of an async operation. Once the
// operation's context is cancelled, nothing further is submitted and any
// already queued job is dropped at dequeue time.
func (c *Container[S]) submit(ctx context.Context, reducer func(S) S) {
	if ctx.Err() != nil {
		return
	}
	c.enqueue(job[S]{reduce: reducer, guard: ctx})
}

// run drains the queue strictly in submission order until the container is
// disposed.
func (c *Container[S]) run() {
	defer close(c.workerDone)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.wake:
			for {
				select {
				case <-c.ctx.Done():
					return
				default:
				}

				c.mu.Lock()
				if len(c.queue) == 0 {
					c.mu.Unlock()
					break
				}
				j := c.queue[0]
				c.queue = c.queue[1:]
				c.mu.Unlock()

				c.step(j)
			}
		}
	}
}

// step applies a single job against the worker-owned state.
func (c *Container[S]) step(j job[S]) {
	if j.guard != nil && j.guard.Err() != nil {
		return
	}
	if j.read != nil {
		j.read(c.state)
		return
	}

	start := c.clock.Now()
	prev := c.state
	next := j.reduce(prev)

	if c.debug {
		// Purity check: the same reducer applied to the same captured base
		// state must yield equal results. Only next is ever committed.
		if again := j.reduce(prev); !c.equal(next, again) {
			err := fmt.Errorf("%w: %T", ErrImpureReducer, j.reduce)
			capitan.Emit(c.ctx, PurityViolation,
				KeyError.Field(err.Error()),
			)
			c.onViolation(err)
			return
		}
	}

	if c.equal(prev, next) {
		capitan.Emit(c.ctx, StateSkipped)
		if c.metrics != nil {
			c.metrics.OnSkip()
		}
		return
	}

	c.state = next
	snap := next
	c.current.Store(&snap)

	if c.debug {
		capitan.Emit(c.ctx, StateCommitted,
			KeyDuration.Field(c.clock.Since(start)),
			KeyState.Field(fmt.Sprintf("%+v", next)),
		)
	} else {
		capitan.Emit(c.ctx, StateCommitted,
			KeyDuration.Field(c.clock.Since(start)),
		)
	}
	if c.metrics != nil {
		c.metrics.OnCommit(c.clock.Since(start))
	}

	c.notify(prev, next)
}

// notify fans a committed change out to every qualifying subscription.
// Delivery order across subscribers is unspecified; per subscriber,
// deliveries match commit order and are never coalesced or dropped.
func (c *Container[S]) notify(prev, next S) {
	c.mu.Lock()
	subs := make([]*subscription[S], 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		if sub.should(prev, next) {
			sub.deliver(prev, next)
			delivered++
		}
	}
	if c.metrics != nil {
		c.metrics.OnNotify(delivered)
	}
}

// recordFailure retains an operation failure for LastError/ErrorHistory and
// emits the failure signal.
func (c *Container[S]) recordFailure(op string, err error) {
	e := err
	c.lastError.Store(&e)
	c.failures.push(Failure{Op: op, Err: err, At: c.clock.Now()})
	capitan.Emit(c.ctx, OperationFailed,
		KeyOperation.Field(op),
		KeyError.Field(err.Error()),
	)
}
