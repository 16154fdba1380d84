package axon

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key container events.
// All callbacks run on the container worker and must be cheap.
type MetricsProvider interface {
	// OnCommit is called when a reducer changes the state.
	// Duration is the time taken to apply the reducer.
	OnCommit(duration time.Duration)

	// OnSkip is called when a reducer is a value-equal no-op.
	OnSkip()

	// OnNotify is called after fan-out of one commit, with the number of
	// subscribers the change was delivered to.
	OnNotify(subscribers int)

	// OnOperationStart is called when Execute begins an operation.
	OnOperationStart()

	// OnOperationEnd is called when an operation reaches a terminal phase,
	// with StatusSuccess or StatusFail and the total operation duration.
	OnOperationEnd(status Status, duration time.Duration)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnCommit(_ time.Duration)                 {}
func (NoOpMetricsProvider) OnSkip()                                  {}
func (NoOpMetricsProvider) OnNotify(_ int)                           {}
func (NoOpMetricsProvider) OnOperationStart()                        {}
func (NoOpMetricsProvider) OnOperationEnd(_ Status, _ time.Duration) {}
