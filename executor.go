package axon

import "sync"

// Executor abstracts the execution context notifications are delivered on:
// a goroutine, an event loop, a test harness. Run schedules fn; it must not
// block the caller indefinitely, since it is invoked from the container
// worker. Implementations decide ordering for the functions they receive;
// the container submits them in commit order.
type Executor interface {
	Run(fn func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(fn func())

// Run calls f(fn).
func (f ExecutorFunc) Run(fn func()) {
	f(fn)
}

// Inline runs notifications synchronously on the container worker. Delivery
// is deterministic, which suits tests and cheap subscribers, but a slow
// callback stalls the queue.
var Inline Executor = ExecutorFunc(func(fn func()) {
	fn()
})

// sequencer is the default delivery executor: one dispatcher goroutine per
// subscription draining an unbounded pending list. Submissions are executed
// strictly in order and are never coalesced or dropped; a slow subscriber
// backs up its own pending list, not the container worker.
type sequencer struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	quit    chan struct{}
	once    sync.Once
}

func newSequencer() *sequencer {
	s := &sequencer{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
	go s.loop()
	return s
}

// Run appends fn to the pending list and wakes the dispatcher.
func (s *sequencer) Run(fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *sequencer) loop() {
	for {
		select {
		case <-s.quit:
			return
		case <-s.wake:
			for {
				select {
				case <-s.quit:
					return
				default:
				}

				s.mu.Lock()
				if len(s.pending) == 0 {
					s.mu.Unlock()
					break
				}
				fn := s.pending[0]
				s.pending = s.pending[1:]
				s.mu.Unlock()

				fn()
			}
		}
	}
}

// stop shuts the dispatcher down. Pending functions are discarded; the
// subscription they belong to is already cancelled.
func (s *sequencer) stop() {
	s.once.Do(func() {
		close(s.quit)
	})
}
