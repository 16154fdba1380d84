package axon

import "github.com/zoobzio/capitan"

// Field keys for container events.
var (
	// KeyState is a textual snapshot of the committed state (debug mode).
	KeyState = capitan.NewStringKey("state")

	// KeyError is the error message when a check or operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyOperation is the name of an async operation.
	KeyOperation = capitan.NewStringKey("operation")

	// KeyDuration is the time taken to apply a reducer or run an operation.
	KeyDuration = capitan.NewDurationKey("duration")

	// KeySubscribers is the number of live subscriptions.
	KeySubscribers = capitan.NewIntKey("subscribers")
)
