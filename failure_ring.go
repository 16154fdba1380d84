package axon

import (
	"sync"
	"time"
)

// Failure records one async operation failure.
type Failure struct {
	// Op is the operation name (see WithOperationName).
	Op string

	// Err is the error the source raised.
	Err error

	// At is when the failure was recorded.
	At time.Time
}

// failureRing is a thread-safe ring buffer of recent operation failures.
type failureRing struct {
	mu      sync.RWMutex
	entries []Failure
	size    int
	head    int
	count   int
}

// newFailureRing creates a ring buffer with the given capacity.
// If size is 0, the ring buffer is disabled.
func newFailureRing(size int) *failureRing {
	if size <= 0 {
		return nil
	}
	return &failureRing{
		entries: make([]Failure, size),
		size:    size,
	}
}

// push records a failure, evicting the oldest entry when full.
func (r *failureRing) push(f Failure) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.head] = f
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// all returns the recorded failures, oldest first.
func (r *failureRing) all() []Failure {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}

	result := make([]Failure, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		result[i] = r.entries[(start+i)%r.size]
	}
	return result
}
