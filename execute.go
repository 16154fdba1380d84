package axon

import (
	"context"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// deliverID names the terminal pipeline stage that maps an emission and
// submits the resulting reducer.
const deliverID pipz.Name = "deliver"

// Operation is a cancellable handle to a running async operation. It is
// owned jointly by the caller and the container: cancelling it detaches
// from the source and guarantees no further state submission on behalf of
// the operation, and disposing the container cancels it automatically.
type Operation struct {
	once   sync.Once
	cancel context.CancelFunc
	remove func()
}

// Cancel detaches the operation from its source. Idempotent.
func (o *Operation) Cancel() {
	o.once.Do(func() {
		o.cancel()
		o.remove()
	})
}

// Emission carries one source value through the per-emission pipeline.
type Emission[T any] struct {
	// Value is the raw value produced by the source.
	Value T

	// Index is the zero-based position of this value in the stream.
	Index int
}

// Identity is a convenience mapper for Execute when the source value is the
// state value.
func Identity[T any](v T) T {
	return v
}

// Execute adapts an asynchronous source into state transitions. It
// synchronously enqueues reduce(s, Loading) on the caller's goroutine before
// opening the source, so an observer cannot miss the loading transition even
// when the source resolves instantly. Every emitted value is mapped and
// committed as Success; a terminal error is committed as Fail and recorded
// against the container, never rethrown.
//
// All commits route through the container's single queue: Loading is
// observably committed before any terminal commit from the same operation,
// and concurrent operations on one container interleave deterministically
// with third-party SetState calls in queue order.
func Execute[S, T, V any](
	c *Container[S],
	src Source[T],
	mapper func(T) V,
	reduce func(S, Async[V]) S,
	opts ...ExecuteOption[T],
) *Operation {
	cfg := executeConfig[T]{name: "execute"}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(c.ctx)
	op := &Operation{cancel: cancel}
	op.remove = c.registry.add(cancel)

	c.submit(ctx, func(s S) S {
		return reduce(s, Loading[V]())
	})

	terminal := pipz.Effect(deliverID, func(_ context.Context, em *Emission[T]) error {
		result := Success(mapper(em.Value))
		if cfg.meta != nil {
			result = result.WithMetadata(cfg.meta(em.Value))
		}
		c.submit(ctx, func(s S) S {
			return reduce(s, result)
		})
		return nil
	})
	pipeline := buildPipeline(terminal, cfg.wrap)

	capitan.Emit(ctx, OperationStarted,
		KeyOperation.Field(cfg.name),
	)
	if c.metrics != nil {
		c.metrics.OnOperationStart()
	}
	start := c.clock.Now()

	go func() {
		fail := func(err error) {
			c.recordFailure(cfg.name, err)
			c.submit(ctx, func(s S) S {
				return reduce(s, Fail[V](err))
			})
			if c.metrics != nil {
				c.metrics.OnOperationEnd(StatusFail, c.clock.Since(start))
			}
		}
		complete := func() {
			capitan.Emit(ctx, OperationCompleted,
				KeyOperation.Field(cfg.name),
				KeyDuration.Field(c.clock.Since(start)),
			)
			if c.metrics != nil {
				c.metrics.OnOperationEnd(StatusSuccess, c.clock.Since(start))
			}
		}

		values, errs, err := src.Open(ctx)
		if err != nil {
			fail(err)
			return
		}

		index := 0
		for {
			select {
			case <-ctx.Done():
				return

			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				fail(err)
				return

			case v, ok := <-values:
				if !ok {
					// Completion and a terminal error can race in select;
					// prefer the error.
					if errs != nil {
						select {
						case err, eok := <-errs:
							if eok && err != nil {
								fail(err)
								return
							}
						default:
						}
					}
					complete()
					return
				}
				em := &Emission[T]{Value: v, Index: index}
				index++
				if _, perr := pipeline.Process(ctx, em); perr != nil {
					fail(perr)
					return
				}
			}
		}
	}()

	return op
}
