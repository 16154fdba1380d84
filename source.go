package axon

import "context"

// Source produces zero or more values and then completes or fails. It is
// the input side of Execute.
type Source[T any] interface {
	// Open begins producing. Values are sent on the first channel, which is
	// closed on completion. At most one terminal error is sent on the second
	// channel; after an error no further values are produced. Open itself
	// returns an error only when the source cannot start at all.
	//
	// Implementations must honor ctx: when it is cancelled, production stops
	// and both channels are closed.
	Open(ctx context.Context) (<-chan T, <-chan error, error)
}

// CallSource adapts a one-shot function into a Source producing a single
// value or a terminal error.
type CallSource[T any] struct {
	fn func(ctx context.Context) (T, error)
}

// Call wraps fn as a one-shot Source.
func Call[T any](fn func(ctx context.Context) (T, error)) *CallSource[T] {
	return &CallSource[T]{fn: fn}
}

// Open invokes the function on a fresh goroutine.
func (s *CallSource[T]) Open(ctx context.Context) (<-chan T, <-chan error, error) {
	values := make(chan T, 1)
	errs := make(chan error, 1)
	go func() {
		defer close(values)
		defer close(errs)
		v, err := s.fn(ctx)
		if err != nil {
			errs <- err
			return
		}
		values <- v
	}()
	return values, errs, nil
}

// ChannelSource adapts an existing channel as a streaming Source. The stream
// completes when the channel closes and never fails.
type ChannelSource[T any] struct {
	ch <-chan T
}

// NewChannelSource wraps ch as a Source. Useful for tests and for custom
// producers that already speak channels.
func NewChannelSource[T any](ch <-chan T) *ChannelSource[T] {
	return &ChannelSource[T]{ch: ch}
}

// Open forwards values from the wrapped channel until it closes or ctx is
// cancelled.
func (s *ChannelSource[T]) Open(ctx context.Context) (<-chan T, <-chan error, error) {
	values := make(chan T)
	errs := make(chan error)
	go func() {
		defer close(values)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-s.ch:
				if !ok {
					return
				}
				select {
				case values <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return values, errs, nil
}
