package axon

import (
	"time"

	"github.com/zoobzio/pipz"
)

// executeConfig carries per-operation configuration for Execute.
type executeConfig[T any] struct {
	name string
	meta func(T) any
	wrap []func(pipz.Chainable[*Emission[T]]) pipz.Chainable[*Emission[T]]
}

// ExecuteOption configures an Execute operation. Pipeline options (WithRetry,
// WithBackoff, WithTimeout, WithEmissionMiddleware) wrap the per-emission
// processing with middleware; the remaining options configure the operation
// itself.
type ExecuteOption[T any] func(*executeConfig[T])

// buildPipeline wraps the terminal deliver stage with pipeline options.
func buildPipeline[T any](
	terminal pipz.Chainable[*Emission[T]],
	wrappers []func(pipz.Chainable[*Emission[T]]) pipz.Chainable[*Emission[T]],
) pipz.Chainable[*Emission[T]] {
	pipeline := terminal
	for _, wrap := range wrappers {
		pipeline = wrap(pipeline)
	}
	return pipeline
}

// WithOperationName names the operation for signals and failure attribution.
// Default: "execute".
func WithOperationName[T any](name string) ExecuteOption[T] {
	return func(cfg *executeConfig[T]) {
		cfg.name = name
	}
}

// WithMetadata sets an extractor producing per-operation metadata from each
// raw source value. The metadata is attached to the Success result, distinct
// from the mapped value.
func WithMetadata[T any](extract func(T) any) ExecuteOption[T] {
	return func(cfg *executeConfig[T]) {
		cfg.meta = extract
	}
}

// WithRetry wraps the per-emission pipeline with retry logic. Failed
// emission processing is retried immediately up to maxAttempts times.
// For exponential backoff between retries, use WithBackoff instead.
func WithRetry[T any](maxAttempts int) ExecuteOption[T] {
	return func(cfg *executeConfig[T]) {
		cfg.wrap = append(cfg.wrap, func(p pipz.Chainable[*Emission[T]]) pipz.Chainable[*Emission[T]] {
			return pipz.NewRetry("retry", p, maxAttempts)
		})
	}
}

// WithBackoff wraps the per-emission pipeline with exponential backoff retry
// logic: baseDelay, 2*baseDelay, 4*baseDelay, and so on.
func WithBackoff[T any](maxAttempts int, baseDelay time.Duration) ExecuteOption[T] {
	return func(cfg *executeConfig[T]) {
		cfg.wrap = append(cfg.wrap, func(p pipz.Chainable[*Emission[T]]) pipz.Chainable[*Emission[T]] {
			return pipz.NewBackoff("backoff", p, maxAttempts, baseDelay)
		})
	}
}

// WithTimeout wraps the per-emission pipeline with a timeout. Processing a
// single emission for longer than d fails the operation.
func WithTimeout[T any](d time.Duration) ExecuteOption[T] {
	return func(cfg *executeConfig[T]) {
		cfg.wrap = append(cfg.wrap, func(p pipz.Chainable[*Emission[T]]) pipz.Chainable[*Emission[T]] {
			return pipz.NewTimeout("timeout", p, d)
		})
	}
}

// WithEmissionMiddleware inserts custom processors ahead of the terminal
// deliver stage. Processors run in the order provided. For advanced cases,
// compose pipz.Chainable implementations directly.
func WithEmissionMiddleware[T any](processors ...pipz.Chainable[*Emission[T]]) ExecuteOption[T] {
	return func(cfg *executeConfig[T]) {
		cfg.wrap = append(cfg.wrap, func(p pipz.Chainable[*Emission[T]]) pipz.Chainable[*Emission[T]] {
			all := make([]pipz.Chainable[*Emission[T]], 0, len(processors)+1)
			all = append(all, processors...)
			all = append(all, p)
			return pipz.NewSequence("middleware", all...)
		})
	}
}
