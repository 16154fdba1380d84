/*
Package axon provides a serialized, single-owner state container with
change subscriptions and async operation tracking.

A Container owns one immutable state value. All mutation and read requests
flow through a single sequential worker, so no locks are needed and every
observer sees committed states in one global order.

# Basic Usage

Create a container and mutate it with pure reducers:

	type CounterState struct {
	    Count int
	}

	container := axon.New(CounterState{})

	container.SetState(func(s CounterState) CounterState {
	    s.Count++
	    return s
	})

Read the latest committed snapshot without waiting on the queue:

	current := container.State()

Read with a read-after-write guarantee, delivered on the worker once every
previously submitted reducer has been applied:

	container.WithState(func(s CounterState) {
	    fmt.Println("count is", s.Count)
	})

# Subscriptions

Subscribers are invoked once per committed change. Commits that leave the
state value-equal to the previous one are suppressed and notify nobody.

	sub := container.Subscribe(func(s CounterState) {
	    fmt.Println("count changed:", s.Count)
	})
	defer sub.Cancel()

Projected subscriptions fire only when the projection changes:

	axon.SelectSubscribe(container,
	    func(s CounterState) int { return s.Count },
	    func(count int) { fmt.Println(count) },
	)

History subscriptions receive the previous and the new state:

	container.SubscribeWithHistory(func(prev, next CounterState) {
	    fmt.Printf("%d -> %d\n", prev.Count, next.Count)
	})

Subscriptions can be bound to a context for automatic cancellation and can
choose their delivery executor:

	container.Subscribe(onChange,
	    axon.WithContext[CounterState](ctx),
	    axon.WithExecutor[CounterState](axon.Inline),
	)

# Async Operations

Execute turns an asynchronous source into a deterministic sequence of state
transitions. A Loading commit is enqueued before the source is opened, so an
observer can never see the terminal commit first, even for a source that
resolves instantly:

	type UserState struct {
	    User axon.Async[User]
	}

	op := axon.Execute(container,
	    axon.Call(fetchUser),
	    axon.Identity[User],
	    func(s UserState, res axon.Async[User]) UserState {
	        s.User = res
	        return s
	    },
	)

Streaming sources commit one Success per emitted value:

	axon.Execute(container, axon.NewChannelSource(ticks), axon.Identity[int], reduce)

Source errors are captured as Fail values, never rethrown. Cancelling the
returned Operation detaches from the source; disposing the container cancels
every live operation and subscription.

# Debug Mode

With Debug enabled, the container validates at construction that the state type
is a publicly constructible, structurally immutable struct that survives a
codec round trip, and it applies every reducer twice to the same base state
to detect impure reducers. Violations are fatal by default and are intended
to fail fast during development.

	container := axon.New(initial).Debug()

# Observability

Lifecycle, commit, subscription, and operation events are emitted as capitan
signals. Attach a MetricsProvider via the Metrics method for counters and
timings.
*/
package axon
