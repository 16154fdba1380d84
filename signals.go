package axon

import "github.com/zoobzio/capitan"

// Container lifecycle signals.
var (
	// ContainerCreated is emitted when a container starts its worker.
	ContainerCreated = capitan.NewSignal(
		"axon.container.created",
		"Container created",
	)

	// ContainerDisposed is emitted when a container is torn down.
	ContainerDisposed = capitan.NewSignal(
		"axon.container.disposed",
		"Container disposed",
	)
)

// Commit signals.
var (
	// StateCommitted is emitted when a reducer changes the state. In debug
	// mode the event carries a textual snapshot of the new state.
	StateCommitted = capitan.NewSignal(
		"axon.state.committed",
		"State change committed",
	)

	// StateSkipped is emitted when a reducer leaves the state value-equal
	// to the previous one and no notification fires.
	StateSkipped = capitan.NewSignal(
		"axon.state.skipped",
		"No-op mutation suppressed",
	)
)

// Subscription signals.
var (
	// SubscriptionAdded is emitted when a subscription is registered.
	SubscriptionAdded = capitan.NewSignal(
		"axon.subscription.added",
		"Subscription registered",
	)

	// SubscriptionCancelled is emitted when a subscription is cancelled,
	// explicitly, by its bound context, or by container teardown.
	SubscriptionCancelled = capitan.NewSignal(
		"axon.subscription.cancelled",
		"Subscription cancelled",
	)
)

// Async operation signals.
var (
	// OperationStarted is emitted when Execute begins an operation.
	OperationStarted = capitan.NewSignal(
		"axon.operation.started",
		"Async operation started",
	)

	// OperationCompleted is emitted when a source completes without error.
	OperationCompleted = capitan.NewSignal(
		"axon.operation.completed",
		"Async operation completed",
	)

	// OperationFailed is emitted when a source raises a terminal error.
	OperationFailed = capitan.NewSignal(
		"axon.operation.failed",
		"Async operation failed",
	)
)

// Debug validation signals.
var (
	// ValidationFailed is emitted when the initial state fails a debug
	// check: constructibility, immutability, or the codec round trip.
	ValidationFailed = capitan.NewSignal(
		"axon.validation.failed",
		"Debug state validation failed",
	)

	// PurityViolation is emitted when double application of a reducer
	// yields unequal results in debug mode.
	PurityViolation = capitan.NewSignal(
		"axon.state.purity.violation",
		"Reducer purity violation",
	)
)
