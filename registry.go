package axon

import "sync"

// registry tracks the cancellation functions of every resource a container
// owns: subscriptions and pending async operations. Closing the registry
// cancels them all; a resource added after close is cancelled immediately.
type registry struct {
	mu     sync.Mutex
	closed bool
	next   uint64
	items  map[uint64]func()
}

func newRegistry() *registry {
	return &registry{
		items: make(map[uint64]func()),
	}
}

// add registers a cancellation function and returns its removal function,
// for resources that are cancelled before the container is disposed.
func (r *registry) add(cancel func()) (remove func()) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return func() {}
	}
	id := r.next
	r.next++
	r.items[id] = cancel
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.items, id)
		r.mu.Unlock()
	}
}

// close cancels every registered resource. Idempotent.
func (r *registry) close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	items := r.items
	r.items = nil
	r.mu.Unlock()

	for _, cancel := range items {
		cancel()
	}
}
