package axon

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
)

// Subscription is a handle to a live subscription. Cancel is idempotent and
// is invoked automatically when a bound context is done or the container is
// disposed.
type Subscription struct {
	once sync.Once
	stop func()
}

// Cancel removes the subscription. No delivery begins after Cancel returns.
func (s *Subscription) Cancel() {
	s.once.Do(s.stop)
}

// subscription is the container-internal record of a subscriber.
type subscription[S any] struct {
	should    func(prev, next S) bool
	notify    func(prev, next S)
	exec      Executor
	seq       *sequencer
	cancelled atomic.Bool
	done      chan struct{}
}

// deliver schedules one notification on the subscription's executor.
// Cancellation is rechecked on the delivery context so nothing runs after
// Cancel has returned.
func (s *subscription[S]) deliver(prev, next S) {
	s.exec.Run(func() {
		if s.cancelled.Load() {
			return
		}
		s.notify(prev, next)
	})
}

// subscribeConfig carries per-subscription options.
type subscribeConfig[S any] struct {
	ctx    context.Context
	exec   Executor
	should func(prev, next S) bool
}

// SubscribeOption configures a subscription.
type SubscribeOption[S any] func(*subscribeConfig[S])

// WithContext binds the subscription to a context: when the context is done
// the subscription is cancelled, exactly once.
func WithContext[S any](ctx context.Context) SubscribeOption[S] {
	return func(cfg *subscribeConfig[S]) {
		cfg.ctx = ctx
	}
}

// WithExecutor sets the execution context notifications are delivered on.
// The default is a per-subscription sequential dispatcher goroutine that
// preserves commit order without ever blocking the container worker.
func WithExecutor[S any](exec Executor) SubscribeOption[S] {
	return func(cfg *subscribeConfig[S]) {
		cfg.exec = exec
	}
}

// WithShouldUpdate sets a predicate deciding whether a commit is delivered.
// The default delivers on every commit, which is every state change since
// no-op mutations are suppressed. Projected subscriptions apply their
// projection comparison in addition to this predicate.
func WithShouldUpdate[S any](pred func(prev, next S) bool) SubscribeOption[S] {
	return func(cfg *subscribeConfig[S]) {
		cfg.should = pred
	}
}

// Subscribe invokes fn with the new state once per committed change.
func (c *Container[S]) Subscribe(fn func(next S), opts ...SubscribeOption[S]) *Subscription {
	return c.addSubscription(nil, func(_, next S) { fn(next) }, opts)
}

// SubscribeWithHistory invokes fn with the previous and new state once per
// committed change. There is no delivery at subscription time: the first
// pair a subscriber sees carries the state current when it subscribed as
// prev, produced by the first subsequent commit.
func (c *Container[S]) SubscribeWithHistory(fn func(prev, next S), opts ...SubscribeOption[S]) *Subscription {
	return c.addSubscription(nil, fn, opts)
}

// SelectSubscribe invokes fn with a projection of the state, only when the
// projection changes across a commit. A commit that changes unrelated state
// is not delivered.
func SelectSubscribe[S, A any](c *Container[S], sel func(S) A, fn func(A), opts ...SubscribeOption[S]) *Subscription {
	should := func(prev, next S) bool {
		return !reflect.DeepEqual(sel(prev), sel(next))
	}
	return c.addSubscription(should, func(_, next S) { fn(sel(next)) }, opts)
}

// SelectSubscribe2 is SelectSubscribe for two projections. fn is invoked
// when either projection changes.
func SelectSubscribe2[S, A, B any](c *Container[S], selA func(S) A, selB func(S) B, fn func(A, B), opts ...SubscribeOption[S]) *Subscription {
	should := func(prev, next S) bool {
		return !reflect.DeepEqual(selA(prev), selA(next)) ||
			!reflect.DeepEqual(selB(prev), selB(next))
	}
	return c.addSubscription(should, func(_, next S) { fn(selA(next), selB(next)) }, opts)
}

// SelectSubscribe3 is SelectSubscribe for three projections. fn is invoked
// when any projection changes.
func SelectSubscribe3[S, A, B, C any](c *Container[S], selA func(S) A, selB func(S) B, selC func(S) C, fn func(A, B, C), opts ...SubscribeOption[S]) *Subscription {
	should := func(prev, next S) bool {
		return !reflect.DeepEqual(selA(prev), selA(next)) ||
			!reflect.DeepEqual(selB(prev), selB(next)) ||
			!reflect.DeepEqual(selC(prev), selC(next))
	}
	return c.addSubscription(should, func(_, next S) { fn(selA(next), selB(next), selC(next)) }, opts)
}

// addSubscription registers a subscriber. base is the built-in delivery
// predicate (nil means deliver on every commit); a WithShouldUpdate
// predicate is applied in addition to it.
func (c *Container[S]) addSubscription(base func(prev, next S) bool, notify func(prev, next S), opts []SubscribeOption[S]) *Subscription {
	var cfg subscribeConfig[S]
	for _, opt := range opts {
		opt(&cfg)
	}

	should := base
	switch {
	case should == nil && cfg.should == nil:
		should = func(_, _ S) bool { return true }
	case should == nil:
		should = cfg.should
	case cfg.should != nil:
		inner, user := should, cfg.should
		should = func(prev, next S) bool {
			return inner(prev, next) && user(prev, next)
		}
	}

	sub := &subscription[S]{
		should: should,
		notify: notify,
		done:   make(chan struct{}),
	}
	if cfg.exec != nil {
		sub.exec = cfg.exec
	} else {
		sub.seq = newSequencer()
		sub.exec = sub.seq
	}

	c.mu.Lock()
	if c.disposed.Load() {
		c.mu.Unlock()
		if sub.seq != nil {
			sub.seq.stop()
		}
		return &Subscription{stop: func() {}}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = sub
	count := len(c.subs)
	c.mu.Unlock()

	capitan.Emit(c.ctx, SubscriptionAdded,
		KeySubscribers.Field(count),
	)

	cancel := func() {
		if !sub.cancelled.CompareAndSwap(false, true) {
			return
		}
		close(sub.done)
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
		if sub.seq != nil {
			sub.seq.stop()
		}
		capitan.Emit(c.ctx, SubscriptionCancelled)
	}
	remove := c.registry.add(cancel)

	if cfg.ctx != nil {
		go func() {
			select {
			case <-cfg.ctx.Done():
				remove()
				cancel()
			case <-sub.done:
			}
		}()
	}

	return &Subscription{stop: func() {
		remove()
		cancel()
	}}
}
