package axon

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Status represents the lifecycle phase of an asynchronous operation.
type Status int32

const (
	// StatusUninitialized indicates no operation has run yet.
	StatusUninitialized Status = iota

	// StatusLoading indicates an operation is in flight.
	StatusLoading

	// StatusSuccess indicates the operation completed with a value.
	StatusSuccess

	// StatusFail indicates the operation raised an error.
	StatusFail
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "uninitialized":
		*s = StatusUninitialized
	case "loading":
		*s = StatusLoading
	case "success":
		*s = StatusSuccess
	case "fail":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Async tracks the lifecycle of an asynchronous result. It is a value type:
// construct it with Uninitialized, Loading, Success, or Fail and store it in
// state; a committed Async is never mutated in place.
//
// A failure's error is retained as data. It is never rethrown once inside
// the type; consumers decide how to render it.
type Async[T any] struct {
	status Status
	value  T
	err    error
	meta   any
}

// Uninitialized returns an Async in the initial phase, before any
// operation has run.
func Uninitialized[T any]() Async[T] {
	return Async[T]{status: StatusUninitialized}
}

// Loading returns an Async representing an operation in flight.
func Loading[T any]() Async[T] {
	return Async[T]{status: StatusLoading}
}

// Success returns an Async carrying a completed value.
func Success[T any](value T) Async[T] {
	return Async[T]{status: StatusSuccess, value: value}
}

// Fail returns an Async carrying the error an operation raised.
func Fail[T any](err error) Async[T] {
	return Async[T]{status: StatusFail, err: err}
}

// WithMetadata returns a copy carrying per-operation metadata. Metadata is
// diagnostic information distinct from the mapped value; it participates in
// value equality but is excluded from serialization.
func (a Async[T]) WithMetadata(meta any) Async[T] {
	a.meta = meta
	return a
}

// Status returns the lifecycle phase.
func (a Async[T]) Status() Status {
	return a.status
}

// Value returns the carried value and true when the status is Success.
func (a Async[T]) Value() (T, bool) {
	if a.status != StatusSuccess {
		var zero T
		return zero, false
	}
	return a.value, true
}

// Err returns the carried error, or nil unless the status is Fail.
func (a Async[T]) Err() error {
	if a.status != StatusFail {
		return nil
	}
	return a.err
}

// Metadata returns the attached metadata and true if any was set.
func (a Async[T]) Metadata() (any, bool) {
	return a.meta, a.meta != nil
}

// Loading reports whether an operation is in flight.
func (a Async[T]) Loading() bool {
	return a.status == StatusLoading
}

// Complete reports whether the operation reached a terminal phase.
func (a Async[T]) Complete() bool {
	return a.status == StatusSuccess || a.status == StatusFail
}

// asyncJSON is the serialized shape of an Async. Metadata is intentionally
// excluded: it is diagnostic and not part of the persisted state.
type asyncJSON[T any] struct {
	Status Status `json:"status"`
	Value  *T     `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MarshalJSON implements json.Marshaler so states embedding Async survive
// the debug round-trip check.
func (a Async[T]) MarshalJSON() ([]byte, error) {
	out := asyncJSON[T]{Status: a.status}
	if a.status == StatusSuccess {
		v := a.value
		out.Value = &v
	}
	if a.status == StatusFail && a.err != nil {
		out.Error = a.err.Error()
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Async[T]) UnmarshalJSON(data []byte) error {
	var in asyncJSON[T]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Async[T]{status: in.Status}
	if in.Value != nil {
		a.value = *in.Value
	}
	if in.Error != "" {
		a.err = errors.New(in.Error)
	}
	return nil
}
